// Package wheel reads built Python distribution files.
//
// A wheel is a zip container whose filename encodes its identity
// (PEP 427: distribution-version[-build]-python-abi-platform.whl) and whose
// *.dist-info/METADATA member carries the package metadata, including the
// Requires-Dist entries the generated targets derive their deps from.
package wheel

import (
	"path/filepath"
	"strings"

	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
	"github.com/wheelhouse-build/wheelhouse/pkg/requirements"
)

// Wheel is one built distribution file, identified by its filename fields.
type Wheel struct {
	Path string // path as given to Parse

	Distribution string // escaped distribution name, e.g. "typing_extensions"
	Version      string
	BuildTag     string // optional
	PythonTag    string
	ABITag       string
	PlatformTag  string
}

// Parse reads a wheel's identity from its filename. A filename that does not
// follow the wheel naming convention is a hard error: skipping it would
// silently drop a target from the generated output.
func Parse(path string) (*Wheel, error) {
	base := filepath.Base(path)
	stem, ok := strings.CutSuffix(base, ".whl")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidWheel, "not a wheel file: %s", base)
	}

	parts := strings.Split(stem, "-")
	w := &Wheel{Path: path}
	switch len(parts) {
	case 5:
		w.Distribution, w.Version = parts[0], parts[1]
		w.PythonTag, w.ABITag, w.PlatformTag = parts[2], parts[3], parts[4]
	case 6:
		w.Distribution, w.Version, w.BuildTag = parts[0], parts[1], parts[2]
		w.PythonTag, w.ABITag, w.PlatformTag = parts[3], parts[4], parts[5]
	default:
		return nil, errors.New(errors.ErrCodeInvalidWheel, "malformed wheel filename: %s", base)
	}
	if w.Distribution == "" || w.Version == "" {
		return nil, errors.New(errors.ErrCodeInvalidWheel, "malformed wheel filename: %s", base)
	}
	return w, nil
}

// Name returns the normalized package name encoded in the filename.
func (w *Wheel) Name() string {
	return requirements.Normalize(w.Distribution)
}

// Filename returns the wheel's base filename.
func (w *Wheel) Filename() string {
	return filepath.Base(w.Path)
}

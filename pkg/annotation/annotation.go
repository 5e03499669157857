// Package annotation loads per-package build augmentation data.
//
// An annotations file is a JSON object keyed by package name. Each entry
// carries optional build-time additions for that package's generated target:
// extra build content, extra data entries, exclusion globs, and files to copy
// out of the wheel. Packages without an entry render with a nil annotation,
// which is valid everywhere an annotation is accepted.
package annotation

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
	"github.com/wheelhouse-build/wheelhouse/pkg/requirements"
)

// Annotation is user-supplied augmentation for one package's generated target.
type Annotation struct {
	// AdditiveBuildContent is appended verbatim to the generated BUILD file.
	AdditiveBuildContent string `json:"additive_build_content,omitempty"`

	// CopyFiles maps wheel-relative source paths to destination paths for
	// plain file copies.
	CopyFiles map[string]string `json:"copy_files,omitempty"`

	// CopyExecutables is like CopyFiles but marks the destination executable.
	CopyExecutables map[string]string `json:"copy_executables,omitempty"`

	// Data lists extra labels added to the target's data attribute.
	Data []string `json:"data,omitempty"`

	// DataExcludeGlob lists globs removed from the target's data files.
	DataExcludeGlob []string `json:"data_exclude_glob,omitempty"`

	// SrcsExcludeGlob lists globs removed from the target's source files.
	SrcsExcludeGlob []string `json:"srcs_exclude_glob,omitempty"`
}

// Map holds annotations keyed by normalized package name.
type Map map[string]*Annotation

// FromFile loads an annotations map from a JSON file. An empty path yields an
// empty map so callers never branch on whether annotations were supplied.
func FromFile(path string) (Map, error) {
	if path == "" {
		return Map{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAnnotations, err, "read annotations file %s", path)
	}
	raw := map[string]*Annotation{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidAnnotations, err, "parse annotations file %s", path)
	}
	m := make(Map, len(raw))
	for name, ann := range raw {
		m[requirements.Normalize(name)] = ann
	}
	return m, nil
}

// Collect filters the map down to the given package names and reports
// annotations that matched no package. The reference implementation warns on
// unmatched entries rather than failing: an annotation for a package pip did
// not produce usually means a typo, not a broken build.
func (m Map) Collect(pkgs []string) (matched Map, unmatched []string) {
	want := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		want[requirements.Normalize(p)] = true
	}
	matched = Map{}
	for name, ann := range m {
		if want[name] {
			matched[name] = ann
			continue
		}
		unmatched = append(unmatched, name)
	}
	sort.Strings(unmatched)
	return matched, unmatched
}

// Get returns the annotation for the given package name, or nil.
func (m Map) Get(name string) *Annotation {
	return m[requirements.Normalize(name)]
}

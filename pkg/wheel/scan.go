package wheel

import (
	"path/filepath"
	"sort"

	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
)

// Scan lists the wheels in dir, non-recursively, sorted by filename.
// An empty result is not an error; downstream rendering produces an
// empty-but-valid output file for it.
func Scan(dir string) ([]*Wheel, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.whl"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "glob wheels in %s", dir)
	}
	sort.Strings(matches)

	wheels := make([]*Wheel, 0, len(matches))
	for _, m := range matches {
		w, err := Parse(m)
		if err != nil {
			return nil, err
		}
		wheels = append(wheels, w)
	}
	return wheels, nil
}

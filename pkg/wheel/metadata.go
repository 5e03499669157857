package wheel

import (
	"archive/zip"
	"bufio"
	"regexp"
	"sort"
	"strings"

	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
	"github.com/wheelhouse-build/wheelhouse/pkg/requirements"
)

// Metadata holds the subset of a wheel's dist-info metadata this tool uses.
type Metadata struct {
	Name         string
	Version      string
	RequiresDist []string // raw Requires-Dist values
}

// distNameRE matches the package name and optional extras of a PEP 508
// requirement string, e.g. `requests[security] (>=2.0) ; extra == "full"`.
var distNameRE = regexp.MustCompile(`^([0-9A-Za-z][-0-9A-Za-z._]*)`)

// extraMarkerRE matches an `extra == "name"` environment marker.
var extraMarkerRE = regexp.MustCompile(`extra\s*==\s*['"]([^'"]+)['"]`)

// Metadata reads the *.dist-info/METADATA member from the wheel file.
func (w *Wheel) Metadata() (*Metadata, error) {
	r, err := zip.OpenReader(w.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidWheel, err, "open wheel %s", w.Filename())
	}
	defer r.Close()

	for _, f := range r.File {
		dir, base := splitZipPath(f.Name)
		if base != "METADATA" || !strings.HasSuffix(strings.TrimSuffix(dir, "/"), ".dist-info") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidWheel, err, "read metadata of %s", w.Filename())
		}
		defer rc.Close()

		md := &Metadata{}
		scanner := bufio.NewScanner(rc)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				break // end of headers, body is the long description
			}
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch key {
			case "Name":
				md.Name = value
			case "Version":
				md.Version = value
			case "Requires-Dist":
				md.RequiresDist = append(md.RequiresDist, value)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidWheel, err, "read metadata of %s", w.Filename())
		}
		return md, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidWheel, "no dist-info METADATA in %s", w.Filename())
}

// Dependencies returns the normalized names of the wheel's dependencies,
// given the extras requested for this package. Unconditional requirements are
// always included; requirements gated on an `extra == "x"` marker are
// included only when x was requested; requirements gated on any other
// environment marker are skipped (see DESIGN notes).
func (m *Metadata) Dependencies(extras []string) []string {
	want := make(map[string]bool, len(extras))
	for _, e := range extras {
		want[strings.ToLower(e)] = true
	}

	seen := map[string]bool{}
	var deps []string
	for _, rd := range m.RequiresDist {
		spec, marker, hasMarker := strings.Cut(rd, ";")
		if hasMarker {
			em := extraMarkerRE.FindStringSubmatch(marker)
			if em == nil {
				continue // non-extra environment marker
			}
			if !want[strings.ToLower(em[1])] {
				continue
			}
		}
		nm := distNameRE.FindStringSubmatch(strings.TrimSpace(spec))
		if nm == nil {
			continue
		}
		name := requirements.Normalize(nm[1])
		if !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
	sort.Strings(deps)
	return deps
}

// splitZipPath splits a zip member path on forward slashes only; zip paths
// are slash-separated regardless of host OS.
func splitZipPath(name string) (dir, base string) {
	i := strings.LastIndex(name, "/")
	if i < 0 {
		return "", name
	}
	return name[:i+1], name[i+1:]
}

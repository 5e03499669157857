// Package requirements parses pip requirements files.
//
// The parser extracts the information the rest of the tool needs from a
// requirements.txt: which packages are requested and which extras were asked
// for per package (e.g. "requests[security]==2.0.0"). Full requirement
// semantics (version pins, markers, hashes) stay with pip itself; resolution
// is entirely delegated to the pip subprocess.
package requirements

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
)

// reqRE matches the leading package name of a requirement line plus an
// optional bracketed extras list, e.g. "requests[security,socks]==2.0.0".
var reqRE = regexp.MustCompile(`^([0-9A-Za-z][-0-9A-Za-z._]*)(?:\[\s*([^\]]+)\s*\])?`)

// normalizeRE collapses the characters PEP 503 treats as equivalent.
var normalizeRE = regexp.MustCompile(`[-_.]+`)

// Normalize returns the canonical form of a package name: lowercased with
// runs of "-", "_" and "." collapsed to a single "-". Both requirement lines
// and wheel filenames are normalized through this before lookup, so extras
// requested as "Typing_Extensions[full]" still attach to the wheel built for
// "typing-extensions".
func Normalize(name string) string {
	return normalizeRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// Index maps normalized package names to the extras requested for them.
// Packages requested without extras are present with a nil slice only if
// they appeared in the file; absent packages return nil from Extras.
type Index map[string][]string

// Extras returns the extras requested for the given (raw or normalized)
// package name. A nil return means no extras were requested.
func (ix Index) Extras(name string) []string {
	return ix[Normalize(name)]
}

// Packages returns the normalized names in the index, sorted.
func (ix Index) Packages() []string {
	names := make([]string, 0, len(ix))
	for n := range ix {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseExtras reads a requirements file and builds the extras index.
// Comment lines, pip option lines ("-r", "--hash", ...) and URL requirements
// are skipped; they carry no extras information this tool can use.
func ParseExtras(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequirements, err, "open requirements file %s", path)
	}
	defer f.Close()

	ix := Index{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		m := reqRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := Normalize(m[1])
		if _, ok := ix[name]; !ok {
			ix[name] = nil
		}
		if m[2] == "" {
			continue
		}
		for _, extra := range strings.Split(m[2], ",") {
			extra = strings.TrimSpace(extra)
			if extra != "" {
				ix[name] = append(ix[name], extra)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequirements, err, "read requirements file %s", path)
	}

	return ix, nil
}

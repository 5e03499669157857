package bazel

import (
	"strings"
	"text/template"

	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
)

var requirementsTmpl = template.Must(template.New(RequirementsFileName).Parse(`"""Generated build targets for built wheels.

Consume individual packages through requirement() or everything through
all_requirements.
"""

all_requirements = [
{{- range .Targets}}
    "{{.}}",
{{- end}}
]

def requirement(name):
    name_key = name.replace("-", "_").replace(".", "_").lower()
    return "{{.RepoLabel}}//{{.RepoPrefix}}" + name_key
`))

// GenerateRequirements renders the requirements.bzl contents for the given
// repo label and fully-qualified target labels. An empty target list is
// valid and renders an empty all_requirements.
func GenerateRequirements(repoLabel, repoPrefix string, targets []string) (string, error) {
	var b strings.Builder
	err := requirementsTmpl.Execute(&b, struct {
		RepoLabel  string
		RepoPrefix string
		Targets    []string
	}{repoLabel, repoPrefix, targets})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRender, err, "render %s", RequirementsFileName)
	}
	return b.String(), nil
}

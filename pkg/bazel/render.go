package bazel

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/wheelhouse-build/wheelhouse/pkg/annotation"
	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
)

// defaultDataExclude keeps generated and non-runtime files out of the
// py_library data attribute. Python sources are excluded because they are
// already carried by srcs; RECORD changes on every extraction.
var defaultDataExclude = []string{
	"**/* *",
	"**/*.py",
	"**/*.pyc",
	"**/*.dist-info/RECORD",
	"BUILD.bazel",
	"WORKSPACE",
	"*.whl",
}

var buildTmpl = template.Must(template.New("BUILD.bazel").Funcs(template.FuncMap{
	"starlark": starlarkList,
}).Parse(`load("@rules_python//python:defs.bzl", "py_library")
{{- if .CopyRules}}
load("@bazel_skylib//rules:copy_file.bzl", "copy_file")
{{- end}}

package(default_visibility = ["//visibility:public"])

filegroup(
    name = "whl",
    srcs = glob(["*.whl"], allow_empty = True),
)

filegroup(
    name = "dist_info",
    srcs = glob(["*.dist-info/**"], allow_empty = True),
)

filegroup(
    name = "data",
    srcs = glob(["data/**"], allow_empty = True),
)
{{range .CopyRules}}
copy_file(
    name = "{{.Name}}",
    src = "{{.Src}}",
    out = "{{.Dest}}",
{{- if .Executable}}
    is_executable = True,
{{- end}}
)
{{end}}
py_library(
    name = "pkg",
    srcs = glob(
        ["**/*.py"],
        exclude = {{starlark .SrcsExclude}},
        allow_empty = True,
    ),
    data = {{starlark .Data}} + glob(
        ["**/*"],
        exclude = {{starlark .DataExclude}},
        allow_empty = True,
    ),
    imports = ["."],
    deps = {{starlark .Deps}},
)
{{- if .Additive}}

{{.Additive}}
{{- end}}
`))

// copyRule is one copy_file rule rendered into a BUILD file.
type copyRule struct {
	Name       string
	Src        string
	Dest       string
	Executable bool
}

// buildFileData is the input for one extracted wheel's BUILD.bazel.
type buildFileData struct {
	Deps        []string
	DataExclude []string
	Annotation  *annotation.Annotation
}

// templateData flattens buildFileData plus annotation fields for rendering.
type templateData struct {
	Deps        []string
	Data        []string
	DataExclude []string
	SrcsExclude []string
	CopyRules   []copyRule
	Additive    string
}

func writeBuildFile(dir string, d buildFileData) error {
	td := templateData{
		Deps:        d.Deps,
		DataExclude: append(append([]string{}, defaultDataExclude...), d.DataExclude...),
	}

	if ann := d.Annotation; ann != nil {
		td.Data = append(td.Data, ann.Data...)
		td.DataExclude = append(td.DataExclude, ann.DataExcludeGlob...)
		td.SrcsExclude = append(td.SrcsExclude, ann.SrcsExcludeGlob...)
		td.CopyRules = append(td.CopyRules, copyRules(ann.CopyFiles, false)...)
		td.CopyRules = append(td.CopyRules, copyRules(ann.CopyExecutables, true)...)
		td.Additive = strings.TrimSpace(ann.AdditiveBuildContent)
	}
	for _, cr := range td.CopyRules {
		td.Data = append(td.Data, ":"+cr.Name)
	}

	f, err := os.Create(filepath.Join(dir, "BUILD.bazel"))
	if err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create BUILD.bazel in %s", dir)
	}
	defer f.Close()

	if err := buildTmpl.Execute(f, td); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "render BUILD.bazel in %s", dir)
	}
	return nil
}

// copyRules builds deterministic copy_file rules from an annotation mapping.
func copyRules(m map[string]string, executable bool) []copyRule {
	srcs := make([]string, 0, len(m))
	for src := range m {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)

	rules := make([]copyRule, 0, len(srcs))
	for _, src := range srcs {
		dest := m[src]
		rules = append(rules, copyRule{
			Name:       "copy_" + sanitizer.Replace(strings.ReplaceAll(dest, "/", "_")),
			Src:        src,
			Dest:       dest,
			Executable: executable,
		})
	}
	return rules
}

// starlarkList renders a string slice as a Starlark list literal.
func starlarkList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteString("[")
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q", item)
	}
	b.WriteString("]")
	return b.String()
}

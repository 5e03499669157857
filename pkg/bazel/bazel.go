// Package bazel generates Bazel build configuration for built wheels.
//
// Each wheel is extracted into its own directory named after the package
// (prefixed, sanitized for Bazel), given a BUILD.bazel exposing it as a
// py_library, and referenced from a generated requirements.bzl that maps
// requirement names back to labels.
package bazel

import (
	"strings"

	"github.com/wheelhouse-build/wheelhouse/pkg/requirements"
)

// RequirementsFileName is the fixed name of the generated top-level file.
const RequirementsFileName = "requirements.bzl"

// DefaultRepoPrefix is the directory/target prefix used when none is given.
const DefaultRepoPrefix = "pypi__"

// sanitizer maps the package-name characters Bazel target names reject.
var sanitizer = strings.NewReplacer("-", "_", ".", "_")

// SanitizeName converts a package name into a prefixed Bazel-safe directory
// name, e.g. ("typing-extensions", "pypi__") -> "pypi__typing_extensions".
func SanitizeName(name, prefix string) string {
	return prefix + sanitizer.Replace(strings.ToLower(name))
}

// RepoLabel renders the repository label for a repo name, e.g. "@pip".
func RepoLabel(repo string) string {
	return "@" + repo
}

// PackageLabel renders the in-repo label for a package directory,
// e.g. "//pypi__requests". Combined with RepoLabel it forms the full
// target label written into requirements.bzl.
func PackageLabel(name, prefix string) string {
	return "//" + SanitizeName(requirements.Normalize(name), prefix)
}

// Package cli implements the wheelhouse command-line interface.
//
// The main command is "build": resolve a requirements file through pip wheel,
// extract the resulting wheels, and generate Bazel build files for them.
// A "parse" command exposes the requirements parsing step on its own for
// debugging.
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

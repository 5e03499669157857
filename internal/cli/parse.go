package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wheelhouse-build/wheelhouse/pkg/requirements"
)

// newParseCmd creates the parse command, a debug tool that runs only the
// requirements-parsing step and prints the extras index as JSON.
func newParseCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse <requirements-file>",
		Short: "Parse a requirements file and print its extras index",
		Long: `Parse reads a pip requirements file and prints the per-package extras
index as JSON. This is the same parsing the build command applies before
invoking pip.

Example:
  wheelhouse parse requirements.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			logger := loggerFromContext(c.Context())

			ix, err := requirements.ParseExtras(args[0])
			if err != nil {
				return err
			}
			logger.Debugf("parsed %d packages", len(ix))

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ix)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

// nopCloser wraps an io.Writer with a no-op Close method so os.Stdout can be
// used where a WriteCloser is expected.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path, or stdout if empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

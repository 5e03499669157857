package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wheelhouse-build/wheelhouse/pkg/buildinfo"
)

// Execute runs the wheelhouse CLI and returns an error if any command fails.
//
// The root command wires the --verbose flag into the logger attached to the
// command context; all commands retrieve it via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "wheelhouse",
		Short:        "wheelhouse builds Python wheels and generates Bazel targets for them",
		Long:         `wheelhouse resolves a pip requirements file, builds the resolved packages into wheels via "pip wheel", and generates Bazel build files exposing each wheel as a py_library target.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newParseCmd())

	return root.ExecuteContext(ctx)
}

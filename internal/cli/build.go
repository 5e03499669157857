package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheelhouse-build/wheelhouse/internal/pipeline"
	"github.com/wheelhouse-build/wheelhouse/pkg/annotation"
	"github.com/wheelhouse-build/wheelhouse/pkg/bazel"
	"github.com/wheelhouse-build/wheelhouse/pkg/config"
	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
)

// buildOpts holds the command-line flags for the build command.
// The three structured flags arrive as JSON strings and are decoded into
// typed values during validation, before anything runs.
type buildOpts struct {
	requirements string // requirements file path (required)
	annotations  string // annotations JSON file path
	configPath   string // TOML defaults file path

	repo       string // repo label name
	repoPrefix string // generated target prefix

	python     string // interpreter for "python -m pip"
	isolated   bool   // pass --isolated to pip
	implicitNS bool   // enable implicit namespace packages

	extraPipArgs   string // JSON array of extra pip arguments
	pipDataExclude string // JSON array of data exclusion globs
	environment    string // JSON object of extra environment variables
}

// newBuildCmd creates the build command: the full resolve → build → render
// pipeline.
func newBuildCmd() *cobra.Command {
	opts := buildOpts{repoPrefix: bazel.DefaultRepoPrefix}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build wheels from a requirements file and generate Bazel targets",
		Long: `Build resolves and fetches packages transitively from a pip requirements
file, compiles them into wheels, and generates the Bazel build files needed to
consume each wheel as a py_library target.

Resolution, download and compilation are fully delegated to "pip wheel"; this
command orchestrates the subprocess and renders its outputs.

Examples:
  wheelhouse build --requirements requirements.txt --repo pip
  wheelhouse build --requirements requirements.txt --repo pip \
      --annotations annotations.json --extra-pip-args '["--no-cache-dir"]'`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(c, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.requirements, "requirements", "", "path to the requirements file to install dependencies from")
	cmd.Flags().StringVar(&opts.annotations, "annotations", "", "JSON file with per-package annotations")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML file with default flag values")
	cmd.Flags().StringVar(&opts.repo, "repo", "", "repository label under which targets are generated")
	cmd.Flags().StringVar(&opts.repoPrefix, "repo-prefix", opts.repoPrefix, "prefix for generated package directories")
	cmd.Flags().StringVar(&opts.python, "python", "", "python interpreter used to run pip")
	cmd.Flags().BoolVar(&opts.isolated, "isolated", false, "run pip in isolated mode")
	cmd.Flags().BoolVar(&opts.implicitNS, "enable-implicit-namespace-pkgs", false, "do not shim __init__.py into namespace packages")
	cmd.Flags().StringVar(&opts.extraPipArgs, "extra-pip-args", "", "JSON array of extra arguments passed to pip")
	cmd.Flags().StringVar(&opts.pipDataExclude, "pip-data-exclude", "", "JSON array of globs excluded from package data")
	cmd.Flags().StringVar(&opts.environment, "environment", "", "JSON object of extra environment variables for pip")

	_ = cmd.MarkFlagRequired("requirements")

	return cmd
}

// runBuild validates flags, layers them over config-file defaults, and
// executes the pipeline.
func runBuild(cmd *cobra.Command, opts *buildOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	extraArgs, err := decodeStringSlice("extra-pip-args", opts.extraPipArgs)
	if err != nil {
		return err
	}
	dataExclude, err := decodeStringSlice("pip-data-exclude", opts.pipDataExclude)
	if err != nil {
		return err
	}
	env, err := decodeStringMap("environment", opts.environment)
	if err != nil {
		return err
	}

	anns, err := annotation.FromFile(opts.annotations)
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Requirements:                opts.requirements,
		Annotations:                 anns,
		Repo:                        stringOr(opts.repo, cfg.Render.Repo),
		RepoPrefix:                  opts.repoPrefix,
		Python:                      stringOr(opts.python, cfg.Pip.Python),
		Isolated:                    opts.isolated || cfg.Pip.Isolated,
		EnableImplicitNamespacePkgs: opts.implicitNS || cfg.Render.EnableImplicitNamespacePkgs,
		ExtraPipArgs:                append(append([]string{}, cfg.Pip.ExtraArgs...), extraArgs...),
		PipDataExclude:              append(append([]string{}, cfg.Render.DataExclude...), dataExclude...),
		Environment:                 mergeEnv(cfg.Pip.Environment, env),
	}
	if !cmd.Flags().Changed("repo-prefix") && cfg.Render.RepoPrefix != "" {
		popts.RepoPrefix = cfg.Render.RepoPrefix
	}

	prog := newProgress(logger)
	result, err := pipeline.NewRunner(nil, logger).Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %d targets", len(result.Targets)))

	printSuccess("Built %d packages from %s", len(result.Targets), opts.requirements)
	for _, t := range result.Targets {
		printDetail("%s", t)
	}
	printFile(result.OutputFile)
	return nil
}

// decodeStringSlice decodes a JSON array flag value. Empty means no values.
func decodeStringSlice(flag, value string) ([]string, error) {
	if value == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFlag, err, "--%s must be a JSON array of strings", flag)
	}
	return out, nil
}

// decodeStringMap decodes a JSON object flag value. Empty means no entries.
func decodeStringMap(flag, value string) (map[string]string, error) {
	if value == "" {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFlag, err, "--%s must be a JSON object of strings", flag)
	}
	return out, nil
}

// stringOr returns v unless it is empty, in which case fallback is used.
func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// mergeEnv merges flag-supplied variables over config-file defaults.
func mergeEnv(base, override map[string]string) map[string]string {
	if len(base) == 0 {
		return override
	}
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// Package pipeline runs the wheelhouse build flow end to end.
//
// The flow is strictly linear: assemble the reproducible build environment,
// invoke pip wheel, scan the produced wheels, extract each one into a Bazel
// package, and write the top-level requirements.bzl. No stage is retried or
// run concurrently; any failure aborts the whole invocation, and the output
// file is only written after every wheel rendered successfully.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/wheelhouse-build/wheelhouse/pkg/annotation"
	"github.com/wheelhouse-build/wheelhouse/pkg/bazel"
	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
	"github.com/wheelhouse-build/wheelhouse/pkg/pip"
	"github.com/wheelhouse-build/wheelhouse/pkg/requirements"
	"github.com/wheelhouse-build/wheelhouse/pkg/wheel"
)

// Options configures one pipeline execution.
type Options struct {
	Requirements string         // path to the requirements file (required)
	Annotations  annotation.Map // per-package augmentation, may be empty

	Repo       string // repo label name, rendered as "@repo"
	RepoPrefix string // prefix for generated package directories

	Python                      string
	Isolated                    bool
	EnableImplicitNamespacePkgs bool
	ExtraPipArgs                []string
	PipDataExclude              []string
	Environment                 map[string]string

	// WorkDir is where wheels land and generated files are written.
	// Empty means the current working directory.
	WorkDir string
}

// Result summarizes a successful execution.
type Result struct {
	Targets    []string // fully-qualified target labels, in wheel order
	OutputFile string   // path of the written requirements.bzl
}

// Runner executes the pipeline. The pip Runner is injectable so tests can
// substitute the subprocess.
type Runner struct {
	Pip    pip.Runner
	Logger *log.Logger
}

// NewRunner creates a runner. A nil pip runner gets the real subprocess
// implementation; a nil logger gets the default logger.
func NewRunner(p pip.Runner, logger *log.Logger) *Runner {
	if p == nil {
		p = pip.ExecRunner{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Pip: p, Logger: logger}
}

// Execute runs the full flow and returns the rendered targets.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Requirements == "" {
		return nil, errors.New(errors.ErrCodeInvalidFlag, "requirements path is required")
	}
	if opts.RepoPrefix == "" {
		opts.RepoPrefix = bazel.DefaultRepoPrefix
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "determine working directory")
		}
		workDir = wd
	}
	wheelDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "resolve working directory")
	}

	extras, err := requirements.ParseExtras(opts.Requirements)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("running pip wheel", "requirements", opts.Requirements, "wheel-dir", wheelDir)
	inv := pip.Invocation{
		Python:       opts.Python,
		Requirements: opts.Requirements,
		WheelDir:     wheelDir,
		Isolated:     opts.Isolated,
		ExtraArgs:    opts.ExtraPipArgs,
		Env:          pip.BuildEnv{Extra: opts.Environment},
	}
	if err := r.Pip.Run(ctx, inv); err != nil {
		return nil, err
	}

	wheels, err := wheel.Scan(wheelDir)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("scanned wheels", "count", len(wheels))

	names := make([]string, len(wheels))
	for i, w := range wheels {
		names[i] = w.Name()
	}
	matched, unmatched := opts.Annotations.Collect(names)
	for _, name := range unmatched {
		r.Logger.Warn("annotation matches no built package", "package", name)
	}

	repoLabel := bazel.RepoLabel(opts.Repo)
	targets := make([]string, 0, len(wheels))
	for _, w := range wheels {
		label, err := bazel.ExtractWheel(bazel.ExtractOptions{
			Wheel:                       w,
			Extras:                      extras.Extras(w.Name()),
			DataExclude:                 opts.PipDataExclude,
			EnableImplicitNamespacePkgs: opts.EnableImplicitNamespacePkgs,
			RepoPrefix:                  opts.RepoPrefix,
			Annotation:                  matched.Get(w.Name()),
			Root:                        wheelDir,
		})
		if err != nil {
			return nil, err
		}
		targets = append(targets, repoLabel+label)
	}

	contents, err := bazel.GenerateRequirements(repoLabel, opts.RepoPrefix, targets)
	if err != nil {
		return nil, err
	}
	outPath := filepath.Join(wheelDir, bazel.RequirementsFileName)
	if err := os.WriteFile(outPath, []byte(contents), 0o644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeWrite, err, "write %s", bazel.RequirementsFileName)
	}

	return &Result{Targets: targets, OutputFile: outPath}, nil
}

package pip

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
)

// DefaultPython is the interpreter used to run pip when none is configured.
const DefaultPython = "python3"

// Invocation describes one pip wheel run.
type Invocation struct {
	// Python is the interpreter executable; pip runs as "python -m pip".
	Python string

	// Requirements is the path to the requirements file.
	Requirements string

	// WheelDir is where pip writes the built wheels. pip runs with its
	// working directory set to the requirements file's directory (so relative
	// references inside the file resolve), which is why this must be an
	// explicit absolute path back to the invocation directory.
	WheelDir string

	// Isolated adds pip's --isolated flag.
	Isolated bool

	// ExtraArgs are appended verbatim to the pip command line.
	ExtraArgs []string

	// Env is the subprocess environment.
	Env BuildEnv
}

// Args returns the full command line, starting with the interpreter.
func (inv Invocation) Args() []string {
	python := inv.Python
	if python == "" {
		python = DefaultPython
	}
	args := []string{python, "-m", "pip"}
	if inv.Isolated {
		args = append(args, "--isolated")
	}
	args = append(args, "wheel", "-r", inv.Requirements)
	args = append(args, "--wheel-dir", inv.WheelDir)
	return append(args, inv.ExtraArgs...)
}

// Dir returns the working directory for the subprocess: the directory
// containing the requirements file, resolved to an absolute path.
func (inv Invocation) Dir() (string, error) {
	dir, err := filepath.Abs(filepath.Dir(inv.Requirements))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidRequirements, err, "resolve requirements directory")
	}
	return dir, nil
}

// Runner executes a pip invocation. The pipeline takes a Runner so tests can
// substitute the subprocess.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExecRunner runs pip as a real subprocess, streaming its output through.
type ExecRunner struct{}

// Run executes pip and blocks until it exits. A non-zero exit is fatal with
// no retry; pip has already written its diagnostics to stderr, so the error
// carries no detail beyond the exit status.
func (ExecRunner) Run(ctx context.Context, inv Invocation) error {
	dir, err := inv.Dir()
	if err != nil {
		return err
	}

	args := inv.Args()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Env = inv.Env.Apply(os.Environ())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		// Keep the cancellation cause in the chain so callers can tell an
		// interrupted run apart from a pip failure.
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrCodePipFailed, ctx.Err(), "pip wheel interrupted")
		}
		return errors.Wrap(errors.ErrCodePipFailed, err, "pip wheel failed")
	}
	return nil
}

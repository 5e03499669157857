package pip

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/wheelhouse-build/wheelhouse/pkg/errors"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		inv  Invocation
		want []string
	}{
		{
			name: "defaults",
			inv:  Invocation{Requirements: "requirements.txt", WheelDir: "/work"},
			want: []string{"python3", "-m", "pip", "wheel", "-r", "requirements.txt", "--wheel-dir", "/work"},
		},
		{
			name: "isolated",
			inv:  Invocation{Requirements: "requirements.txt", WheelDir: "/work", Isolated: true},
			want: []string{"python3", "-m", "pip", "--isolated", "wheel", "-r", "requirements.txt", "--wheel-dir", "/work"},
		},
		{
			name: "custom interpreter and extra args",
			inv: Invocation{
				Python:       "python3.11",
				Requirements: "deps/requirements.txt",
				WheelDir:     "/work",
				ExtraArgs:    []string{"--no-cache-dir", "--index-url", "https://mirror/simple"},
			},
			want: []string{
				"python3.11", "-m", "pip", "wheel", "-r", "deps/requirements.txt",
				"--wheel-dir", "/work", "--no-cache-dir", "--index-url", "https://mirror/simple",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.inv.Args())
		})
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	req := filepath.Join(dir, "requirements.txt")
	require.NoError(t, os.WriteFile(req, []byte("flask==2.0.0\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The test binary stands in for the interpreter; the cancelled context
	// stops the command before it ever runs.
	inv := Invocation{Python: os.Args[0], Requirements: req, WheelDir: dir}
	err := ExecRunner{}.Run(ctx, inv)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, pkgerrors.ErrCodePipFailed, pkgerrors.GetCode(err))
}

func TestDir(t *testing.T) {
	inv := Invocation{Requirements: "deps/requirements.txt"}
	dir, err := inv.Dir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "deps", filepath.Base(dir))
}

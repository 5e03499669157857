package wheel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhouse-build/wheelhouse/internal/testutil"
)

func TestScanEmpty(t *testing.T) {
	wheels, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, wheels)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteWheel(t, dir, testutil.WheelSpec{Filename: "flask-3.0.0-py3-none-any.whl"})
	testutil.WriteWheel(t, dir, testutil.WheelSpec{Filename: "requests-2.0.0-py3-none-any.whl"})
	// non-wheel files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("flask\n"), 0o644))
	// wheels in subdirectories are not picked up (scan is non-recursive)
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	testutil.WriteWheel(t, sub, testutil.WheelSpec{Filename: "numpy-1.26.0-py3-none-any.whl"})

	wheels, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, wheels, 2)
	assert.Equal(t, "flask", wheels[0].Name())
	assert.Equal(t, "requests", wheels[1].Name())
}

func TestScanMalformedName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.whl"), []byte("zip?"), 0o644))

	_, err := Scan(dir)
	assert.Error(t, err)
}

package bazel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhouse-build/wheelhouse/internal/testutil"
	"github.com/wheelhouse-build/wheelhouse/pkg/annotation"
	"github.com/wheelhouse-build/wheelhouse/pkg/wheel"
)

func buildWheel(t *testing.T, dir string, spec testutil.WheelSpec) *wheel.Wheel {
	t.Helper()
	path := testutil.WriteWheel(t, dir, spec)
	w, err := wheel.Parse(path)
	require.NoError(t, err)
	return w
}

func TestExtractWheel(t *testing.T) {
	root := t.TempDir()
	w := buildWheel(t, root, testutil.WheelSpec{
		Filename: "requests-2.0.0-py3-none-any.whl",
		Metadata: []string{
			"Requires-Dist: urllib3 (>=1.21.1)",
			`Requires-Dist: pyopenssl ; extra == "security"`,
		},
		Files: map[string]string{
			"requests/__init__.py": "",
			"requests/api.py":      "def get(): pass\n",
		},
	})

	label, err := ExtractWheel(ExtractOptions{
		Wheel:      w,
		Extras:     []string{"security"},
		RepoPrefix: "pypi__",
		Root:       root,
	})
	require.NoError(t, err)
	assert.Equal(t, "//pypi__requests", label)

	dir := filepath.Join(root, "pypi__requests")
	assert.FileExists(t, filepath.Join(dir, "requests", "api.py"))
	assert.FileExists(t, filepath.Join(dir, "requests-2.0.0.dist-info", "METADATA"))
	assert.FileExists(t, filepath.Join(dir, "requests-2.0.0-py3-none-any.whl"))

	build, err := os.ReadFile(filepath.Join(dir, "BUILD.bazel"))
	require.NoError(t, err)
	content := string(build)
	assert.Contains(t, content, `name = "pkg"`)
	assert.Contains(t, content, `"//pypi__urllib3"`)
	assert.Contains(t, content, `"//pypi__pyopenssl"`)
	assert.Contains(t, content, `filegroup(`)
}

func TestExtractWheelNamespaceShim(t *testing.T) {
	root := t.TempDir()
	w := buildWheel(t, root, testutil.WheelSpec{
		Filename: "nspkg-1.0-py3-none-any.whl",
		Files: map[string]string{
			"ns/sub/mod.py": "x = 1\n",
		},
	})

	_, err := ExtractWheel(ExtractOptions{Wheel: w, RepoPrefix: "pypi__", Root: root})
	require.NoError(t, err)

	dir := filepath.Join(root, "pypi__nspkg")
	assert.FileExists(t, filepath.Join(dir, "ns", "__init__.py"))
	assert.FileExists(t, filepath.Join(dir, "ns", "sub", "__init__.py"))
}

func TestExtractWheelShimsNestedDataDir(t *testing.T) {
	root := t.TempDir()
	w := buildWheel(t, root, testutil.WheelSpec{
		Filename: "datapkg-1.0-py3-none-any.whl",
		Files: map[string]string{
			"datapkg/data/loader.py": "x = 1\n",
			"data/scripts/run":       "#!/bin/sh\n",
		},
	})

	_, err := ExtractWheel(ExtractOptions{Wheel: w, RepoPrefix: "pypi__", Root: root})
	require.NoError(t, err)

	dir := filepath.Join(root, "pypi__datapkg")
	// A module directory that happens to be named "data" still gets the shim.
	assert.FileExists(t, filepath.Join(dir, "datapkg", "__init__.py"))
	assert.FileExists(t, filepath.Join(dir, "datapkg", "data", "__init__.py"))
	// The wheel's top-level data directory is left alone.
	assert.NoFileExists(t, filepath.Join(dir, "data", "__init__.py"))
	assert.NoFileExists(t, filepath.Join(dir, "data", "scripts", "__init__.py"))
}

func TestExtractWheelImplicitNamespaceEnabled(t *testing.T) {
	root := t.TempDir()
	w := buildWheel(t, root, testutil.WheelSpec{
		Filename: "nspkg-1.0-py3-none-any.whl",
		Files: map[string]string{
			"ns/mod.py": "x = 1\n",
		},
	})

	_, err := ExtractWheel(ExtractOptions{
		Wheel:                       w,
		RepoPrefix:                  "pypi__",
		Root:                        root,
		EnableImplicitNamespacePkgs: true,
	})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(root, "pypi__nspkg", "ns", "__init__.py"))
}

func TestExtractWheelAnnotation(t *testing.T) {
	root := t.TempDir()
	w := buildWheel(t, root, testutil.WheelSpec{
		Filename: "flask-3.0.0-py3-none-any.whl",
		Files:    map[string]string{"flask/__init__.py": ""},
	})

	_, err := ExtractWheel(ExtractOptions{
		Wheel:       w,
		RepoPrefix:  "pypi__",
		Root:        root,
		DataExclude: []string{"**/tests/**"},
		Annotation: &annotation.Annotation{
			AdditiveBuildContent: `exports_files(["LICENSE.rst"])`,
			Data:                 []string{"//extra:target"},
			SrcsExcludeGlob:      []string{"flask/testing.py"},
			CopyExecutables:      map[string]string{"flask/cli.py": "bin/flask-cli"},
		},
	})
	require.NoError(t, err)

	build, err := os.ReadFile(filepath.Join(root, "pypi__flask", "BUILD.bazel"))
	require.NoError(t, err)
	content := string(build)
	assert.Contains(t, content, `exports_files(["LICENSE.rst"])`)
	assert.Contains(t, content, `"//extra:target"`)
	assert.Contains(t, content, `"**/tests/**"`)
	assert.Contains(t, content, `"flask/testing.py"`)
	assert.Contains(t, content, "copy_file(")
	assert.Contains(t, content, "is_executable = True")
	assert.Contains(t, content, `load("@bazel_skylib//rules:copy_file.bzl", "copy_file")`)
}

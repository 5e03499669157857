package bazel

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wheelhouse-build/wheelhouse/pkg/annotation"
	"github.com/wheelhouse-build/wheelhouse/pkg/errors"
	"github.com/wheelhouse-build/wheelhouse/pkg/wheel"
)

// namespaceInit is written into package directories that ship without an
// __init__.py when implicit namespace packages are not enabled, so plain
// imports keep working under Bazel's runfiles layout.
const namespaceInit = `__path__ = __import__("pkgutil").extend_path(__path__, __name__)
`

// ExtractOptions configures the extraction of one wheel into a Bazel package.
type ExtractOptions struct {
	Wheel  *wheel.Wheel
	Extras []string

	// DataExclude globs are removed from the py_library data attribute.
	DataExclude []string

	// EnableImplicitNamespacePkgs skips the __init__.py shimming pass.
	EnableImplicitNamespacePkgs bool

	// RepoPrefix prefixes the generated directory and target names.
	RepoPrefix string

	// Annotation is optional per-package augmentation; nil is valid.
	Annotation *annotation.Annotation

	// Root is the directory the package directory is created under.
	Root string
}

// ExtractWheel unpacks the wheel into its target directory, writes that
// directory's BUILD.bazel, and returns the package label ("//pypi__name").
func ExtractWheel(opts ExtractOptions) (string, error) {
	name := opts.Wheel.Name()
	dirName := SanitizeName(name, opts.RepoPrefix)
	dir := filepath.Join(opts.Root, dirName)

	if err := unzip(opts.Wheel.Path, dir); err != nil {
		return "", err
	}
	if err := copyWheel(opts.Wheel.Path, dir); err != nil {
		return "", err
	}

	if !opts.EnableImplicitNamespacePkgs {
		if err := shimNamespacePkgs(dir); err != nil {
			return "", err
		}
	}

	md, err := opts.Wheel.Metadata()
	if err != nil {
		return "", err
	}

	var deps []string
	for _, dep := range md.Dependencies(opts.Extras) {
		if dep == name {
			continue // extras can self-reference; the target cannot
		}
		deps = append(deps, PackageLabel(dep, opts.RepoPrefix))
	}

	if err := writeBuildFile(dir, buildFileData{
		Deps:        deps,
		DataExclude: opts.DataExclude,
		Annotation:  opts.Annotation,
	}); err != nil {
		return "", err
	}

	return "//" + dirName, nil
}

// unzip extracts the wheel's zip contents under dir, preserving file modes.
func unzip(wheelPath, dir string) error {
	r, err := zip.OpenReader(wheelPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidWheel, err, "open wheel %s", filepath.Base(wheelPath))
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractEntry(f, dir); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, dir string) error {
	rel := filepath.FromSlash(f.Name)
	dest := filepath.Join(dir, rel)
	if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
		return errors.New(errors.ErrCodeInvalidWheel, "wheel entry escapes target directory: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return mkdirAll(dest)
	}
	if err := mkdirAll(filepath.Dir(dest)); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidWheel, err, "read wheel entry %s", f.Name)
	}
	defer rc.Close()

	mode := f.Mode() & fs.ModePerm
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "extract %s", f.Name)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "extract %s", f.Name)
	}
	return nil
}

// copyWheel places the original .whl alongside the extracted tree so the
// "whl" filegroup has something to glob.
func copyWheel(wheelPath, dir string) error {
	src, err := os.Open(wheelPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "open wheel %s", filepath.Base(wheelPath))
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, filepath.Base(wheelPath)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "copy wheel into package directory")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "copy wheel into package directory")
	}
	return nil
}

// shimNamespacePkgs writes a pkgutil __init__.py into every directory that
// contains Python files but no __init__.py. Wheels using implicit namespace
// packages (PEP 420) ship such directories; without the shim they are not
// importable from Bazel runfiles unless the flag opting into implicit
// namespace support is set.
func shimNamespacePkgs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		// Only the wheel's own top-level dist-info and data directories are
		// exempt; a package is free to ship a module directory named "data".
		if filepath.Dir(path) == root && (strings.HasSuffix(d.Name(), ".dist-info") || d.Name() == "data") {
			return fs.SkipDir
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		hasInit, hasPy := false, false
		for _, e := range entries {
			switch {
			case e.Name() == "__init__.py":
				hasInit = true
			case strings.HasSuffix(e.Name(), ".py") || e.IsDir():
				hasPy = true
			}
		}
		if hasPy && !hasInit {
			if err := os.WriteFile(filepath.Join(path, "__init__.py"), []byte(namespaceInit), 0o644); err != nil {
				return err
			}
		}
		return nil
	})
}

func mkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create directory %s", dir)
	}
	return nil
}

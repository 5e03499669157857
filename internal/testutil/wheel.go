// Package testutil provides shared test fixtures.
package testutil

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WheelSpec describes a fixture wheel to build for a test.
type WheelSpec struct {
	// Filename is the wheel filename, e.g. "requests-2.0.0-py3-none-any.whl".
	Filename string

	// Metadata lines beyond Name/Version, e.g. Requires-Dist entries.
	Metadata []string

	// Files maps additional zip member paths to contents.
	Files map[string]string

	// DistName and Version override the values parsed from Filename for the
	// METADATA member; normally left empty.
	DistName string
	Version  string
}

// WriteWheel creates a minimal but structurally valid wheel file in dir and
// returns its path. The wheel contains a dist-info METADATA derived from the
// filename plus any extra files the spec lists.
func WriteWheel(t *testing.T, dir string, spec WheelSpec) string {
	t.Helper()

	name, version := spec.DistName, spec.Version
	if name == "" || version == "" {
		parts := splitN(spec.Filename)
		if len(parts) < 2 {
			t.Fatalf("bad wheel filename %q", spec.Filename)
		}
		if name == "" {
			name = parts[0]
		}
		if version == "" {
			version = parts[1]
		}
	}

	path := filepath.Join(dir, spec.Filename)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wheel fixture: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	metadata := fmt.Sprintf("Metadata-Version: 2.1\nName: %s\nVersion: %s\n", name, version)
	for _, line := range spec.Metadata {
		metadata += line + "\n"
	}
	metadata += "\nLong description.\n"

	members := map[string]string{
		fmt.Sprintf("%s-%s.dist-info/METADATA", name, version): metadata,
		fmt.Sprintf("%s-%s.dist-info/RECORD", name, version):   "",
	}
	for member, contents := range spec.Files {
		members[member] = contents
	}
	for member, contents := range members {
		w, err := zw.Create(member)
		if err != nil {
			t.Fatalf("write wheel member %s: %v", member, err)
		}
		if _, err := w.Write([]byte(contents)); err != nil {
			t.Fatalf("write wheel member %s: %v", member, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close wheel fixture: %v", err)
	}
	return path
}

// splitN splits a wheel filename stem on dashes.
func splitN(filename string) []string {
	stem := filename
	if ext := filepath.Ext(stem); ext == ".whl" {
		stem = stem[:len(stem)-len(ext)]
	}
	var parts []string
	start := 0
	for i := 0; i <= len(stem); i++ {
		if i == len(stem) || stem[i] == '-' {
			parts = append(parts, stem[start:i])
			start = i + 1
		}
	}
	return parts
}

// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"

	"wheelhouse/pkg/metadata"
)

func testContext(t *testing.T, python string) Context {
	t.Helper()
	return Context{
		Logger:  log.New(io.Discard),
		Python:  python,
		Pip:     "pip",
		Version: "0.0.0-test",
	}
}

// writeScript writes an executable shell script and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts require a POSIX shell")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("writing script %s: %v", name, err)
	}
	return path
}

// writeWheel creates a minimal but well-formed wheel: a zip archive
// with a dist-info METADATA file.
func writeWheel(t *testing.T, dir, wheelName, requiresPython string) string {
	t.Helper()
	path := filepath.Join(dir, wheelName)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating wheel: %v", err)
	}
	w := zip.NewWriter(f)
	meta, err := w.Create("fake-1.0.dist-info/METADATA")
	if err != nil {
		t.Fatalf("creating METADATA entry: %v", err)
	}
	content := "Metadata-Version: 2.1\nName: fake\n"
	if requiresPython != "" {
		content += "Requires-Python: " + requiresPython + "\n"
	}
	content += "\nbody text\n"
	if _, err := meta.Write([]byte(content)); err != nil {
		t.Fatalf("writing METADATA: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing wheel: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing wheel file: %v", err)
	}
	return path
}

// writeExtracted lays out an extracted archive directory: descriptor
// plus a wheels dir holding the given wheels.
func writeExtracted(t *testing.T, descriptor *metadata.Descriptor, wheelNames []string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), descriptor.PackageName)
	wheelsDir := filepath.Join(dir, metadata.WheelsDir)
	if err := os.MkdirAll(wheelsDir, 0o755); err != nil {
		t.Fatalf("creating wheels dir: %v", err)
	}
	for _, name := range wheelNames {
		writeWheel(t, wheelsDir, name, "")
	}
	if err := descriptor.Write(dir); err != nil {
		t.Fatalf("writing descriptor: %v", err)
	}
	return dir
}

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want kind %s", kind)
	}
	var lifecycleErr *Error
	if !errors.As(err, &lifecycleErr) {
		t.Fatalf("error = %v (%T), want *Error", err, err)
	}
	if lifecycleErr.Kind != kind {
		t.Fatalf("error kind = %s, want %s (error: %v)", lifecycleErr.Kind, kind, err)
	}
}

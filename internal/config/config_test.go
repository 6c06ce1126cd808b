// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := loadWithOptions(LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.DefaultFormat != DefaultFormat {
		t.Errorf("DefaultFormat = %q, want %q", cfg.DefaultFormat, DefaultFormat)
	}
	if cfg.PythonPath != DefaultPythonPath {
		t.Errorf("PythonPath = %q, want %q", cfg.PythonPath, DefaultPythonPath)
	}
	if cfg.PipPath != DefaultPipPath {
		t.Errorf("PipPath = %q, want %q", cfg.PipPath, DefaultPipPath)
	}
	if cfg.IndexURL != DefaultIndexURL {
		t.Errorf("IndexURL = %q, want %q", cfg.IndexURL, DefaultIndexURL)
	}
	if cfg.Verbose {
		t.Error("Verbose = true, want false")
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
default_format: "tar.gz"
pip_path:       "/opt/py/bin/pip"
verbose:        true
`)

	cfg, err := loadWithOptions(LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error = %v", err)
	}
	if cfg.DefaultFormat != "tar.gz" {
		t.Errorf("DefaultFormat = %q, want %q", cfg.DefaultFormat, "tar.gz")
	}
	if cfg.PipPath != "/opt/py/bin/pip" {
		t.Errorf("PipPath = %q, want %q", cfg.PipPath, "/opt/py/bin/pip")
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
	// Untouched keys keep their defaults.
	if cfg.PythonPath != DefaultPythonPath {
		t.Errorf("PythonPath = %q, want default %q", cfg.PythonPath, DefaultPythonPath)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad format value", `default_format: "rar"`},
		{"wrong type", `verbose: "yes"`},
		{"empty executable", `pip_path: ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			if _, err := loadWithOptions(LoadOptions{ConfigDirPath: dir}); err == nil {
				t.Fatal("loadWithOptions() error = nil, want schema violation")
			}
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, err := loadWithOptions(LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("loadWithOptions() error = nil, want missing file error")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %q, want mention of missing file", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		DefaultFormat: "zip",
		PythonPath:    "python",
		PipPath:       "pip",
		IndexURL:      DefaultIndexURL,
	}

	if err := base.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	bad := base
	bad.DefaultFormat = "7z"
	if err := bad.Validate(); err == nil {
		t.Error("Validate() with bad format: error = nil, want ErrInvalidFormat")
	}

	bad = base
	bad.PythonPath = ""
	if err := bad.Validate(); err == nil {
		t.Error("Validate() with empty python_path: error = nil, want ErrEmptyExecutable")
	}
}

func TestConfigDirOverride(t *testing.T) {
	t.Cleanup(Reset)
	dir := t.TempDir()
	SetConfigDirOverride(dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want override %q", got, dir)
	}
}

// SPDX-License-Identifier: MPL-2.0

// Package metadata defines the archive descriptor — the JSON record
// embedded in every wheelhouse archive — and the archive file-name
// convention.
//
// The descriptor is written once at packaging time and fully
// regenerated (never patched) by the repair operation. Its lifetime is
// the archive's lifetime.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wheelhouse/pkg/platform"
)

// FileName is the descriptor's file name inside the archive, at the
// top of the component directory.
const FileName = "package.json"

// ArchiveExtension is the fixed extension of wheelhouse archives,
// regardless of the compression format inside.
const ArchiveExtension = ".whs"

// WheelsDir is the archive subdirectory holding the wheel set.
const WheelsDir = "wheels"

// FilesDir is the archive subdirectory holding attached files.
const FilesDir = "files"

// Descriptor is the archive descriptor.
type Descriptor struct {
	CreatedByVersion  string                `json:"created_by_wheelhouse_version"`
	ArchiveName       string                `json:"archive_name"`
	SupportedPlatform string                `json:"supported_platform"`
	PythonVersions    []string              `json:"supported_python_versions"`
	PythonRequires    string                `json:"python_requires"`
	OSProperties      platform.OSProperties `json:"build_server_os_properties"`
	PackageName       string                `json:"package_name"`
	PackageVersion    string                `json:"package_version"`
	BuildTag          string                `json:"package_build_tag"`
	PackageSource     string                `json:"package_source"`
	Wheels            []string              `json:"wheels"`
	ExcludedWheels    []string              `json:"excluded_wheels"`
	Files             []string              `json:"files"`
}

// ArchiveName builds the archive file name from its tag fields:
//
//	<name>-<version>[-<build_tag>]-<pyvers joined by '.'>-none-<platform>.whs
//
// Dashes inside the package name are replaced with underscores so the
// dash-separated fields stay parseable, mirroring the wheel file-name
// convention the archive name aspires to.
func ArchiveName(packageName, packageVersion string, pythonVersions []string, platformTag, buildTag string) string {
	name := strings.ReplaceAll(packageName, "-", "_")

	fields := []string{name, packageVersion}
	if buildTag != "" {
		fields = append(fields, buildTag)
	}
	fields = append(fields, strings.Join(pythonVersions, "."), "none", platformTag)

	return strings.Join(fields, "-") + ArchiveExtension
}

// Write serializes the descriptor (indented, stable key order courtesy
// of the struct layout) into dir.
func (d *Descriptor) Write(dir string) error {
	// JSON arrays must be present even when empty.
	if d.Wheels == nil {
		d.Wheels = []string{}
	}
	if d.ExcludedWheels == nil {
		d.ExcludedWheels = []string{}
	}
	if d.Files == nil {
		d.Files = []string{}
	}

	encoded, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode descriptor: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}

// Read loads the descriptor from an extracted component directory.
func Read(dir string) (*Descriptor, error) {
	raw, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	return &d, nil
}

// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"wheelhouse/pkg/archive"
	"wheelhouse/pkg/metadata"
)

// fakeAuditwheel installs an auditwheel stand-in at the front of PATH
// that "repairs" a wheel by writing its manylinux twin next to it.
func fakeAuditwheel(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	writeScript(t, dir, "auditwheel", `out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-w" ]; then out="$a"; fi
  prev="$a"
done
: > "$out/fake_package-1.0.0-cp311-cp311-manylinux1_x86_64.whl"
`)
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRepairRequiresAuditwheel(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	ctx := testContext(t, "python")
	_, err := ctx.Repair(context.Background(), "whatever.whs", RepairOptions{})
	wantKind(t, err, KindTool)
	if !strings.Contains(err.Error(), "auditwheel") {
		t.Errorf("error = %q, want mention of auditwheel", err)
	}
}

func TestRepairRewritesLinuxWheels(t *testing.T) {
	fakeAuditwheel(t)

	descriptor := anyDescriptor("fake-package")
	descriptor.SupportedPlatform = "linux_x86_64"
	descriptor.Wheels = []string{
		"dep_pkg-2.0-py3-none-any.whl",
		"fake_package-1.0.0-cp311-cp311-linux_x86_64.whl",
	}
	extracted := writeExtracted(t, descriptor, descriptor.Wheels)

	archivePath := filepath.Join(t.TempDir(), descriptor.ArchiveName)
	if err := archive.Compress(extracted, archivePath, archive.Zip); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	ctx := testContext(t, "python")
	outputDir := t.TempDir()
	repairedPath, err := ctx.Repair(context.Background(), archivePath, RepairOptions{
		OutputDir: outputDir,
	})
	if err != nil {
		t.Fatalf("Repair() error = %v", err)
	}

	wantName := "fake_package-1.0.0-py311-none-manylinux1_x86_64" + metadata.ArchiveExtension
	if got := filepath.Base(repairedPath); got != wantName {
		t.Errorf("repaired archive name = %q, want %q", got, wantName)
	}

	extractDir := t.TempDir()
	if err := archive.Extract(repairedPath, extractDir); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	top, err := archive.TopLevelDir(extractDir)
	if err != nil {
		t.Fatalf("TopLevelDir() error = %v", err)
	}
	repaired, err := metadata.Read(top)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if repaired.SupportedPlatform != "manylinux1_x86_64" {
		t.Errorf("SupportedPlatform = %q, want %q",
			repaired.SupportedPlatform, "manylinux1_x86_64")
	}
	wantWheels := []string{
		"dep_pkg-2.0-py3-none-any.whl",
		"fake_package-1.0.0-cp311-cp311-manylinux1_x86_64.whl",
	}
	if !reflect.DeepEqual(repaired.Wheels, wantWheels) {
		t.Errorf("Wheels = %v, want %v", repaired.Wheels, wantWheels)
	}
	if _, err := os.Stat(filepath.Join(
		top, metadata.WheelsDir, "fake_package-1.0.0-cp311-cp311-linux_x86_64.whl")); err == nil {
		t.Error("original linux wheel still present after repair")
	}
	if repaired.PackageName != "fake-package" || repaired.PackageVersion != "1.0.0" {
		t.Errorf("package identity changed: %s==%s", repaired.PackageName, repaired.PackageVersion)
	}
}

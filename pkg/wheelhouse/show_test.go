// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"context"
	"path/filepath"
	"testing"

	"wheelhouse/pkg/archive"
)

func TestShowReadsDescriptorFromArchive(t *testing.T) {
	descriptor := anyDescriptor("fake-package")
	extracted := writeExtracted(t, descriptor,
		[]string{"fake_package-1.0.0-py3-none-any.whl"})

	archivePath := filepath.Join(t.TempDir(), descriptor.ArchiveName)
	if err := archive.Compress(extracted, archivePath, archive.TarGz); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	ctx := testContext(t, "python")
	got, err := ctx.Show(context.Background(), archivePath)
	if err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if got.PackageName != "fake-package" || got.PackageVersion != "1.0.0" {
		t.Errorf("descriptor = %s==%s, want fake-package==1.0.0",
			got.PackageName, got.PackageVersion)
	}
	if got.SupportedPlatform != "any" {
		t.Errorf("SupportedPlatform = %q, want any", got.SupportedPlatform)
	}
}

func TestShowRejectsDirWithoutDescriptor(t *testing.T) {
	ctx := testContext(t, "python")
	_, err := ctx.Show(context.Background(), t.TempDir())
	wantKind(t, err, KindLocator)
}

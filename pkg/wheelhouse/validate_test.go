// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wheelhouse/pkg/archive"
	"wheelhouse/pkg/metadata"
)

// venvPython returns a python stand-in whose `-m venv` creates a
// working fake environment: the venv's own python handles `-m pip
// install` silently and lists frozenPackage under `-m pip freeze`.
func venvPython(t *testing.T, frozenPackage string) string {
	t.Helper()
	body := fmt.Sprintf(`case "$*" in
  "-m venv "*)
    dir=""
    for a in "$@"; do dir="$a"; done
    mkdir -p "$dir/bin"
    cat > "$dir/bin/python" <<'INNER'
#!/bin/sh
case "$*" in
  *freeze*) echo '%s==1.0.0' ;;
esac
INNER
    chmod +x "$dir/bin/python"
    ;;
esac
`, frozenPackage)
	return writeScript(t, t.TempDir(), "python", body)
}

func TestValidatePasses(t *testing.T) {
	dir := writeExtracted(t, anyDescriptor("fake-package"),
		[]string{"fake_package-1.0.0-py3-none-any.whl"})
	ctx := testContext(t, venvPython(t, "fake-package"))

	problems, err := ctx.Validate(context.Background(), dir)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("problems = %v, want none", problems)
	}
}

func TestValidatePassesWithUnderscoreName(t *testing.T) {
	// pip freeze prints dash-normalized names even when setup.py
	// declares the package with underscores.
	dir := writeExtracted(t, anyDescriptor("my_pkg"),
		[]string{"my_pkg-1.0.0-py3-none-any.whl"})
	ctx := testContext(t, venvPython(t, "my-pkg"))

	problems, err := ctx.Validate(context.Background(), dir)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("problems = %v, want none", problems)
	}
}

func TestValidateLeavesExtractionOnError(t *testing.T) {
	dir := writeExtracted(t, anyDescriptor("fake-package"),
		[]string{"fake_package-1.0.0-py3-none-any.whl"})
	archivePath := filepath.Join(t.TempDir(),
		"fake_package-1.0.0-py311-none-any"+metadata.ArchiveExtension)
	if err := archive.Compress(dir, archivePath, archive.Zip); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	// Route temporary directories somewhere observable.
	tmpRoot := t.TempDir()
	t.Setenv("TMPDIR", tmpRoot)

	// venv creation fails, so validation errors out after extraction.
	python := writeScript(t, t.TempDir(), "python", `case "$*" in
  "-m venv "*) echo 'venv failure' >&2; exit 1 ;;
esac
`)
	ctx := testContext(t, python)

	_, err := ctx.Validate(context.Background(), archivePath)
	wantKind(t, err, KindTool)

	extractions, globErr := filepath.Glob(filepath.Join(tmpRoot, "wheelhouse-source-*"))
	if globErr != nil {
		t.Fatalf("globbing extraction dirs: %v", globErr)
	}
	if len(extractions) != 1 {
		t.Fatalf("extraction dirs = %v, want exactly one left behind", extractions)
	}
	if _, statErr := os.Stat(filepath.Join(extractions[0], "fake-package")); statErr != nil {
		t.Errorf("extracted tree missing: %v", statErr)
	}
}

func TestValidateReportsMissingWheel(t *testing.T) {
	descriptor := anyDescriptor("fake-package")
	descriptor.Wheels = []string{
		"fake_package-1.0.0-py3-none-any.whl",
		"dep_pkg-2.0-py3-none-any.whl",
	}
	dir := writeExtracted(t, descriptor,
		[]string{"fake_package-1.0.0-py3-none-any.whl"})
	ctx := testContext(t, venvPython(t, "fake-package"))

	problems, err := ctx.Validate(context.Background(), dir)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(problems) != 1 {
		t.Fatalf("problems = %v, want exactly one", problems)
	}
	want := "dep_pkg-2.0-py3-none-any.whl is missing from the archive"
	if problems[0] != want {
		t.Errorf("problem = %q, want %q", problems[0], want)
	}
}

func TestValidateReportsFailedInstall(t *testing.T) {
	dir := writeExtracted(t, anyDescriptor("fake-package"),
		[]string{"fake_package-1.0.0-py3-none-any.whl"})
	// freeze lists a different package, so the install check fails.
	ctx := testContext(t, venvPython(t, "other-package"))

	problems, err := ctx.Validate(context.Background(), dir)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(problems) != 1 {
		t.Fatalf("problems = %v, want exactly one", problems)
	}
	if !strings.Contains(problems[0], "failed to install") {
		t.Errorf("problem = %q, want install failure", problems[0])
	}
}

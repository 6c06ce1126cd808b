// SPDX-License-Identifier: MPL-2.0

package cmdrun

import (
	"context"
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive /bin/sh")
	}
}

func TestRunCapturesBothStreams(t *testing.T) {
	requireShell(t)

	result, err := Run(context.Background(), testLogger(), Command{
		Args: []string{"/bin/sh", "-c", "echo out1; echo err1 >&2; echo out2"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Ok() {
		t.Fatalf("ExitCode = %d, want 0", result.ExitCode)
	}
	if result.Stdout != "out1\nout2" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "out1\nout2")
	}
	if result.Stderr != "err1" {
		t.Errorf("Stderr = %q, want %q", result.Stderr, "err1")
	}
}

func TestRunReportsExitCode(t *testing.T) {
	requireShell(t)

	result, err := Run(context.Background(), testLogger(), Command{
		Args: []string{"/bin/sh", "-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v, want exit status in Result", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if result.Ok() {
		t.Error("Ok() = true, want false")
	}
}

func TestRunLargeOutputOnBothStreams(t *testing.T) {
	requireShell(t)

	// Write well past the 64KB OS pipe buffer on both streams. If
	// either stream were drained only after process exit, the child
	// would block on a full pipe and this test would hang.
	script := `i=0
while [ $i -lt 2000 ]; do
  echo "stdout line $i padding-padding-padding-padding-padding-padding"
  echo "stderr line $i padding-padding-padding-padding-padding-padding" >&2
  i=$((i+1))
done`
	result, err := Run(context.Background(), testLogger(), Command{
		Args:           []string{"/bin/sh", "-c", script},
		SuppressOutput: true,
		SuppressErrors: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Ok() {
		t.Fatalf("ExitCode = %d, want 0", result.ExitCode)
	}

	stdoutLines := strings.Split(result.Stdout, "\n")
	stderrLines := strings.Split(result.Stderr, "\n")
	if len(stdoutLines) != 2000 {
		t.Errorf("stdout lines = %d, want 2000", len(stdoutLines))
	}
	if len(stderrLines) != 2000 {
		t.Errorf("stderr lines = %d, want 2000", len(stderrLines))
	}
	if stdoutLines[1999] != "stdout line 1999 padding-padding-padding-padding-padding-padding" {
		t.Errorf("last stdout line = %q", stdoutLines[1999])
	}
}

func TestRunSingleLineLargerThanPipeBuffer(t *testing.T) {
	requireShell(t)

	// One 2MiB line with no newline until the very end. A bounded
	// line reader would stop mid-line with the pipe still full, the
	// child would block writing, and Run would never return.
	script := `head -c 2097152 /dev/zero | tr '\0' 'a'; echo; echo after`
	result, err := Run(context.Background(), testLogger(), Command{
		Args:           []string{"/bin/sh", "-c", script},
		SuppressOutput: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Ok() {
		t.Fatalf("ExitCode = %d, want 0", result.ExitCode)
	}

	lines := strings.Split(result.Stdout, "\n")
	if len(lines) != 2 {
		t.Fatalf("stdout lines = %d, want 2", len(lines))
	}
	if len(lines[0]) != 2097152 {
		t.Errorf("long line length = %d, want 2097152", len(lines[0]))
	}
	if lines[1] != "after" {
		t.Errorf("trailing line = %q, want %q", lines[1], "after")
	}
}

func TestRunWorkingDirectory(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	result, err := Run(context.Background(), testLogger(), Command{
		Args: []string{"/bin/sh", "-c", "pwd"},
		Dir:  dir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// pwd may print a symlink-resolved path; compare the base name.
	base := dir[strings.LastIndex(dir, "/")+1:]
	if !strings.HasSuffix(result.Stdout, base) {
		t.Errorf("Stdout = %q, want path ending in %q", result.Stdout, base)
	}
}

func TestRunEmptyCommand(t *testing.T) {
	if _, err := Run(context.Background(), testLogger(), Command{}); err == nil {
		t.Error("Run() error = nil, want empty command error")
	}
}

func TestRunMissingExecutable(t *testing.T) {
	if _, err := Run(context.Background(), testLogger(), Command{
		Args: []string{"/no/such/executable-anywhere"},
	}); err == nil {
		t.Error("Run() error = nil, want start failure")
	}
}

func TestCommandString(t *testing.T) {
	command := Command{Args: []string{"pip", "wheel", "--wheel-dir", "wheels"}}
	if got := command.String(); got != "pip wheel --wheel-dir wheels" {
		t.Errorf("String() = %q", got)
	}
}

// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"

	"wheelhouse/internal/cmdrun"
	"wheelhouse/pkg/source"
)

// Context carries the tool paths and logger shared by every lifecycle
// operation. It is a plain value; copies are cheap and independent.
type Context struct {
	// Logger receives operation progress and echoed tool output.
	Logger *log.Logger

	// Python is the interpreter used for setup.py queries, venv
	// creation and version detection.
	Python string

	// Pip is the pip executable used outside a virtual environment.
	// Create may override it per build via CreateOptions.PipPaths.
	Pip string

	// Index resolves bare package names to canonical name and latest
	// version.
	Index *source.IndexClient

	// Version is stamped into descriptors as the creating tool's
	// version.
	Version string
}

// pipArgv returns the pip invocation for the given environment: the
// configured pip executable, or, when a venv is set, its interpreter
// via `python -m pip` so the pip and the environment it mutates stay
// in lockstep.
func (c Context) pipArgv(venv string) []string {
	if venv != "" {
		return []string{c.pythonPath(venv), "-m", "pip"}
	}
	pip := c.Pip
	if pip == "" {
		pip = "pip"
	}
	return []string{pip}
}

func (c Context) pythonPath(venv string) string {
	if venv == "" {
		return c.Python
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(venv, "Scripts", "python.exe")
	}
	return filepath.Join(venv, "bin", "python")
}

// runTool executes an external command and converts a nonzero exit
// into a KindTool error carrying the tool's stderr.
func (c Context) runTool(ctx context.Context, command cmdrun.Command, what string) (*cmdrun.Result, error) {
	result, err := cmdrun.Run(ctx, c.Logger, command)
	if err != nil {
		return nil, wrapError(KindTool, err, "running %s", what)
	}
	if !result.Ok() {
		msg := fmt.Sprintf("%s failed (exit %d)", what, result.ExitCode)
		if result.Stderr != "" {
			msg += ": " + result.Stderr
		}
		return nil, newError(KindTool, "%s", msg)
	}
	return result, nil
}

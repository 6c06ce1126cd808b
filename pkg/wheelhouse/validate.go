// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"wheelhouse/pkg/metadata"
	"wheelhouse/pkg/source"
)

// Validate checks a wheelhouse archive and returns the list of
// problems found. Problems are accumulated, never raised: a non-nil
// error means validation itself could not run, an empty slice means
// the archive passed.
//
// On failure the extracted archive is left in place so the operator
// can inspect it; its location is logged.
func (c Context) Validate(ctx context.Context, locator string) ([]string, error) {
	c.Logger.Info("validating", "source", locator)

	resolved, err := source.Get(ctx, c.Logger, c.Index, locator)
	if err != nil {
		return nil, wrapError(KindLocator, err, "resolving source %s", locator)
	}

	if resolved.Dir == "" {
		return nil, newError(KindLocator, "%s is not a local or remote archive", locator)
	}

	descriptor, err := metadata.Read(resolved.Dir)
	if err != nil {
		c.leaveForInspection(resolved)
		return nil, wrapError(KindLocator, err, "reading archive descriptor")
	}

	var problems []string

	c.Logger.Debug("verifying that all required wheels exist")
	wheelsDir := filepath.Join(resolved.Dir, metadata.WheelsDir)
	for _, wheel := range descriptor.Wheels {
		if _, err := os.Stat(filepath.Join(wheelsDir, wheel)); err != nil {
			problems = append(problems, fmt.Sprintf("%s is missing from the archive", wheel))
		}
	}

	c.Logger.Debug("testing package installation")
	installProblems, err := c.validateInstall(ctx, resolved.Dir, descriptor.PackageName)
	if err != nil {
		c.leaveForInspection(resolved)
		return nil, err
	}
	problems = append(problems, installProblems...)

	if len(problems) > 0 {
		c.Logger.Error("validation failed")
		for _, problem := range problems {
			c.Logger.Error(problem)
		}
		c.leaveForInspection(resolved)
		return problems, nil
	}

	c.Logger.Info("validation passed")
	resolved.Cleanup()
	return nil, nil
}

// leaveForInspection keeps a temporary extraction on disk after a
// failed validation and tells the operator where it is.
func (c Context) leaveForInspection(resolved *source.Resolved) {
	if resolved.Temporary {
		c.Logger.Info("extracted archive left for inspection", "dir", resolved.Dir)
	}
}

// validateInstall installs the package into a throwaway venv and
// checks pip freeze lists it. The venv is always removed.
func (c Context) validateInstall(ctx context.Context, dir, packageName string) ([]string, error) {
	venvDir, err := os.MkdirTemp("", "wheelhouse-venv-*")
	if err != nil {
		return nil, fmt.Errorf("creating venv directory: %w", err)
	}
	defer os.RemoveAll(venvDir)

	if err := c.makeVenv(ctx, venvDir); err != nil {
		return nil, err
	}

	if err := c.installExtracted(ctx, dir, InstallOptions{Venv: venvDir}); err != nil {
		return nil, err
	}

	installed, err := c.checkInstalled(ctx, packageName, venvDir)
	if err != nil {
		return nil, err
	}
	if !installed {
		return []string{fmt.Sprintf("%s failed to install (reason unknown)", packageName)}, nil
	}
	return nil, nil
}

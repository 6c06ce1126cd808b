// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"wheelhouse/internal/cmdrun"
	"wheelhouse/pkg/archive"
	"wheelhouse/pkg/metadata"
	"wheelhouse/pkg/platform"
	"wheelhouse/pkg/source"
	"wheelhouse/pkg/wheels"
)

// RepairOptions configures archive repair.
type RepairOptions struct {
	// OutputDir is where the repaired archive lands. Empty means the
	// current working directory.
	OutputDir string

	// Format is the compression format of the repaired archive.
	// Empty means zip.
	Format string

	// Validate runs the validation pass on the repaired archive.
	Validate bool

	// Force overwrites an existing destination archive.
	Force bool
}

// Repair rewrites every non-portable Linux wheel in an archive through
// auditwheel, regenerates the descriptor from the repaired wheel set
// and writes a new archive. Returns the new archive's path.
func (c Context) Repair(ctx context.Context, locator string, opts RepairOptions) (string, error) {
	if _, err := exec.LookPath("auditwheel"); err != nil {
		return "", newError(KindTool,
			"could not find auditwheel; make sure it is installed and on the PATH")
	}

	c.Logger.Info("repairing", "source", locator)

	resolved, err := source.Get(ctx, c.Logger, c.Index, locator)
	if err != nil {
		return "", wrapError(KindLocator, err, "resolving source %s", locator)
	}
	defer resolved.Cleanup()

	if resolved.Dir == "" {
		return "", newError(KindLocator, "%s is not a local or remote archive", locator)
	}

	descriptor, err := metadata.Read(resolved.Dir)
	if err != nil {
		return "", wrapError(KindLocator, err, "reading archive descriptor")
	}

	wheelsDir := filepath.Join(resolved.Dir, metadata.WheelsDir)
	if err := c.repairWheels(ctx, wheelsDir); err != nil {
		return "", err
	}

	// The wheel set changed under us; recompute rather than patch.
	repairedWheels, err := wheels.List(wheelsDir)
	if err != nil {
		return "", fmt.Errorf("listing repaired wheels: %w", err)
	}
	platformTag, err := platform.ResolveDir(wheelsDir, c.Logger)
	if err != nil {
		return "", err
	}

	descriptor.Wheels = repairedWheels
	descriptor.SupportedPlatform = platformTag
	descriptor.OSProperties = platform.LocalOSProperties()
	descriptor.ArchiveName = metadata.ArchiveName(
		descriptor.PackageName,
		descriptor.PackageVersion,
		descriptor.PythonVersions,
		platformTag,
		descriptor.BuildTag,
	)
	if err := descriptor.Write(resolved.Dir); err != nil {
		return "", err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	archivePath := filepath.Join(outputDir, descriptor.ArchiveName)
	if err := c.clearDestination(archivePath, opts.Force); err != nil {
		return "", err
	}

	format := archive.Zip
	if opts.Format != "" {
		format, err = archive.ParseFormat(opts.Format)
		if err != nil {
			return "", err
		}
	}
	if err := archive.Compress(resolved.Dir, archivePath, format); err != nil {
		return "", err
	}

	if opts.Validate {
		problems, err := c.Validate(ctx, archivePath)
		if err != nil {
			return "", err
		}
		if len(problems) > 0 {
			return "", newError(KindTool, "validation failed: %v", problems)
		}
	}

	c.Logger.Info("archive repaired successfully", "path", archivePath)
	return archivePath, nil
}

// repairWheels runs auditwheel over every wheel tagged for an exact
// linux platform, replacing it with the portable wheel auditwheel
// emits. Portable and non-Linux wheels pass through untouched.
func (c Context) repairWheels(ctx context.Context, wheelsDir string) error {
	names, err := wheels.List(wheelsDir)
	if err != nil {
		return fmt.Errorf("listing wheels: %w", err)
	}

	for _, name := range names {
		if !strings.HasPrefix(wheels.PlatformTag(name), "linux") {
			continue
		}
		wheelPath := filepath.Join(wheelsDir, name)
		c.Logger.Info("repairing wheel", "wheel", name)
		if _, err := c.runTool(ctx, cmdrun.Command{
			Args: []string{"auditwheel", "repair", wheelPath, "-w", wheelsDir},
		}, "auditwheel repair"); err != nil {
			return err
		}
		if err := os.Remove(wheelPath); err != nil {
			return fmt.Errorf("removing original wheel %s: %w", name, err)
		}
	}
	return nil
}

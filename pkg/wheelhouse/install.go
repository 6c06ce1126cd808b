// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"context"
	"os"
	"path/filepath"

	"mvdan.cc/sh/v3/shell"

	"wheelhouse/internal/cmdrun"
	"wheelhouse/pkg/metadata"
	"wheelhouse/pkg/platform"
	"wheelhouse/pkg/source"
)

// InstallOptions configures archive installation.
type InstallOptions struct {
	// Venv installs into the given virtual environment instead of the
	// running interpreter's environment. Must already exist.
	Venv string

	// RequirementFiles are additional requirements installed before
	// the package itself.
	RequirementFiles []string

	// Upgrade passes --upgrade to pip.
	Upgrade bool

	// IgnorePlatform skips the platform compatibility gate.
	IgnorePlatform bool

	// InstallArgs is extra arguments for `pip install`, split using
	// shell quoting rules.
	InstallArgs string
}

// Install installs a wheelhouse archive from any supported locator.
func (c Context) Install(ctx context.Context, locator string, opts InstallOptions) error {
	c.Logger.Info("installing", "source", locator)

	resolved, err := source.Get(ctx, c.Logger, c.Index, locator)
	if err != nil {
		return wrapError(KindLocator, err, "resolving source %s", locator)
	}
	defer resolved.Cleanup()

	if resolved.Dir == "" {
		return newError(KindLocator, "%s is not a local or remote archive", locator)
	}

	return c.installExtracted(ctx, resolved.Dir, opts)
}

// installExtracted installs from an already extracted archive
// directory. Validate reuses it to avoid a second extraction.
func (c Context) installExtracted(ctx context.Context, dir string, opts InstallOptions) error {
	descriptor, err := metadata.Read(dir)
	if err != nil {
		return wrapError(KindLocator, err, "reading archive descriptor")
	}

	if !opts.IgnorePlatform && descriptor.SupportedPlatform != platform.AnyTag {
		c.Logger.Debug("validating platform support",
			"supported", descriptor.SupportedPlatform)
		machineTag := platform.Local()
		if !platform.IsSupported(descriptor.SupportedPlatform, machineTag) {
			return newError(KindCompatibility,
				"platform unsupported for archive (machine %s, archive %s)",
				machineTag, descriptor.SupportedPlatform)
		}
	}

	if opts.Venv != "" {
		if info, err := os.Stat(opts.Venv); err != nil || !info.IsDir() {
			return newError(KindLocator, "virtualenv %s does not exist", opts.Venv)
		}
	}

	installArgs, err := shell.Fields(opts.InstallArgs, nil)
	if err != nil {
		return newError(KindLocator, "parsing install args %q: %v", opts.InstallArgs, err)
	}

	args := append(c.pipArgv(opts.Venv), "install")
	for _, reqFile := range opts.RequirementFiles {
		args = append(args, "-r", reqFile)
	}
	args = append(args,
		descriptor.PackageName,
		"--no-index",
		"--find-links", filepath.Join(dir, metadata.WheelsDir),
		"--pre",
	)
	if opts.Upgrade {
		args = append(args, "--upgrade")
	}
	args = append(args, installArgs...)

	c.Logger.Info("installing package", "package", descriptor.PackageName)
	_, err = c.runTool(ctx, cmdrun.Command{Args: args}, "pip install")
	return err
}

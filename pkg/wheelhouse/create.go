// SPDX-License-Identifier: MPL-2.0

package wheelhouse

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mvdan.cc/sh/v3/shell"

	"wheelhouse/internal/cmdrun"
	"wheelhouse/pkg/archive"
	"wheelhouse/pkg/metadata"
	"wheelhouse/pkg/platform"
	"wheelhouse/pkg/source"
	"wheelhouse/pkg/wheels"
)

// CreateOptions configures archive creation. Source is the only
// required field.
type CreateOptions struct {
	// Source is the package locator: a local directory with setup.py,
	// a source archive (local path or file/http/https URL), name, or
	// name==version.
	Source string

	// RequirementFiles are additional requirements.txt files whose
	// pinned dependencies are wheeled alongside the package's own.
	RequirementFiles []string

	// Force overwrites an existing destination archive.
	Force bool

	// KeepWheels leaves the staging directory behind after the
	// archive is written.
	KeepWheels bool

	// OutputDir is where the archive lands. Empty means the current
	// working directory.
	OutputDir string

	// PythonVersions are explicit version tags without the "py"
	// prefix ("27", "36"). Empty means ask the interpreter.
	PythonVersions []string

	// Validate runs the validation pass on the finished archive.
	Validate bool

	// WheelArgs is extra arguments for `pip wheel`, split using shell
	// quoting rules.
	WheelArgs string

	// Format is the compression format. Empty means zip.
	Format string

	// BuildTag is an optional build tag inserted into the archive
	// name and recorded in the descriptor.
	BuildTag string

	// PipPaths runs the wheel build once per listed pip executable,
	// accumulating wheels from several interpreters into one archive.
	// Empty means the Context's pip.
	PipPaths []string

	// SupportedPlatform overrides the platform tag derived from the
	// built wheel set.
	SupportedPlatform string

	// ExcludedPackages removes the named packages' wheels from the
	// archive after building, recording them in the descriptor.
	ExcludedPackages []string

	// AddFiles are extra files copied into the archive's files
	// directory.
	AddFiles []string
}

// Create builds a wheelhouse archive and returns its path.
func (c Context) Create(ctx context.Context, opts CreateOptions) (string, error) {
	c.Logger.Info("creating archive", "source", opts.Source)

	resolved, err := source.Get(ctx, c.Logger, c.Index, opts.Source)
	if err != nil {
		return "", wrapError(KindLocator, err, "resolving source %s", opts.Source)
	}
	defer resolved.Cleanup()

	if resolved.Dir != "" {
		if _, err := os.Stat(filepath.Join(resolved.Dir, "setup.py")); err != nil {
			return "", newError(KindLocator, "source directory must contain a setup.py file")
		}
	}

	packageName, packageVersion, err := c.nameAndVersion(ctx, resolved)
	if err != nil {
		return "", err
	}

	stagingRoot, err := os.MkdirTemp("", "wheelhouse-create-*")
	if err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	workDir := filepath.Join(stagingRoot, packageName)
	wheelsDir := filepath.Join(workDir, metadata.WheelsDir)
	keep := false
	defer func() {
		if !keep {
			os.RemoveAll(stagingRoot)
		}
	}()

	pipPaths := opts.PipPaths
	if len(pipPaths) == 0 {
		pipPaths = []string{""}
	}
	for _, pipPath := range pipPaths {
		if err := c.buildWheels(ctx, resolved.Installable, wheelsDir, pipPath, opts); err != nil {
			return "", err
		}
	}

	excluded, err := wheels.Exclude(wheelsDir, opts.ExcludedPackages)
	if err != nil {
		return "", fmt.Errorf("excluding wheels: %w", err)
	}
	for _, name := range excluded {
		c.Logger.Info("excluded wheel", "wheel", name)
	}

	wheelNames, err := wheels.List(wheelsDir)
	if err != nil {
		return "", fmt.Errorf("listing built wheels: %w", err)
	}

	platformTag := opts.SupportedPlatform
	if platformTag == "" {
		platformTag, err = platform.ResolveDir(wheelsDir, c.Logger)
		if err != nil {
			return "", err
		}
	}
	c.Logger.Debug("resolved platform", "platform", platformTag)

	pythonVersions, err := c.pythonVersionTags(ctx, opts.PythonVersions)
	if err != nil {
		return "", err
	}
	requiresPython, err := pythonRequires(wheelsDir)
	if err != nil {
		return "", err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	archiveName := metadata.ArchiveName(
		packageName, packageVersion, pythonVersions, platformTag, opts.BuildTag)
	archivePath := filepath.Join(outputDir, archiveName)
	if err := c.clearDestination(archivePath, opts.Force); err != nil {
		return "", err
	}

	files, err := copyAddFiles(filepath.Join(workDir, metadata.FilesDir), opts.AddFiles)
	if err != nil {
		return "", err
	}

	descriptor := &metadata.Descriptor{
		CreatedByVersion:  c.Version,
		ArchiveName:       archiveName,
		SupportedPlatform: platformTag,
		PythonVersions:    pythonVersions,
		PythonRequires:    requiresPython,
		OSProperties:      platform.LocalOSProperties(),
		PackageName:       packageName,
		PackageVersion:    packageVersion,
		BuildTag:          opts.BuildTag,
		PackageSource:     opts.Source,
		Wheels:            wheelNames,
		ExcludedWheels:    excluded,
		Files:             files,
	}
	if err := descriptor.Write(workDir); err != nil {
		return "", err
	}

	format := archive.Zip
	if opts.Format != "" {
		format, err = archive.ParseFormat(opts.Format)
		if err != nil {
			return "", err
		}
	}
	if err := archive.Compress(workDir, archivePath, format); err != nil {
		return "", err
	}

	if opts.KeepWheels {
		keep = true
		c.Logger.Debug("keeping work directory", "dir", workDir)
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

	c.Logger.Info("archive created successfully", "path", archivePath)
	return archivePath, nil
}

// buildWheels runs `pip wheel` into wheelsDir: once per requirement
// file set, then once for the package itself.
func (c Context) buildWheels(ctx context.Context, installable, wheelsDir, pipPath string, opts CreateOptions) error {
	c.Logger.Info("downloading wheels", "package", installable)

	wheelArgs, err := shell.Fields(opts.WheelArgs, nil)
	if err != nil {
		return newError(KindLocator, "parsing wheel args %q: %v", opts.WheelArgs, err)
	}

	base := c.pipArgv("")
	if pipPath != "" {
		base = []string{pipPath}
	}
	base = append(base, "wheel", "--wheel-dir", wheelsDir, "--find-links", wheelsDir)
	base = append(base, wheelArgs...)

	if len(opts.RequirementFiles) > 0 {
		args := append([]string{}, base...)
		for _, reqFile := range opts.RequirementFiles {
			args = append(args, "-r", reqFile)
		}
		if _, err := c.runTool(ctx, cmdrun.Command{Args: args}, "pip wheel (requirements)"); err != nil {
			return err
		}
	}

	args := append(append([]string{}, base...), installable)
	_, err = c.runTool(ctx, cmdrun.Command{Args: args}, "pip wheel")
	return err
}

// clearDestination enforces the collision policy for the output path.
func (c Context) clearDestination(archivePath string, force bool) error {
	if _, err := os.Stat(archivePath); err != nil {
		return nil
	}
	if !force {
		return newError(KindCollision,
			"destination archive already exists: %s (pass --force to overwrite)", archivePath)
	}
	c.Logger.Info("removing previous archive", "path", archivePath)
	return os.Remove(archivePath)
}

// copyAddFiles copies extra files into the archive's files directory
// and returns their base names for the descriptor.
func copyAddFiles(filesDir string, paths []string) ([]string, error) {
	names := []string{}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return nil, newError(KindLocator, "added file %s does not exist or is a directory", path)
		}
		if err := os.MkdirAll(filesDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating files directory: %w", err)
		}
		name := filepath.Base(path)
		if err := copyFile(path, filepath.Join(filesDir, name)); err != nil {
			return nil, fmt.Errorf("copying %s: %w", path, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

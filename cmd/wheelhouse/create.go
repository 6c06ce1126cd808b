// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wheelhouse/pkg/wheelhouse"
)

var (
	// createRequirementFiles packs wheels from requirements files too
	createRequirementFiles []string
	// createFormat selects the compression format
	createFormat string
	// createForce overwrites an existing destination archive
	createForce bool
	// createKeepWheels keeps the staging directory after creation
	createKeepWheels bool
	// createOutputDir is the destination directory for the archive
	createOutputDir string
	// createPyVers lists explicit supported Python versions
	createPyVers []string
	// createBuildTag is an optional build number for the archive
	createBuildTag string
	// createValidate runs post-creation validation
	createValidate bool
	// createWheelArgs is extra arguments passed through to pip wheel
	createWheelArgs string
	// createPipPaths builds wheels once per listed pip executable
	createPipPaths []string
	// createPlatform overrides the derived platform tag
	createPlatform string
	// createExclude drops the named packages' wheels from the archive
	createExclude []string
	// createAddFiles copies extra files into the archive
	createAddFiles []string
)

// createCmd builds a wheelhouse archive from a source locator
var createCmd = &cobra.Command{
	Use:   "create <source>",
	Short: "Create a wheelhouse archive",
	Long: `Create a wheelhouse archive from a Python package source.

The source can be given as:
  - PACKAGE_NAME or PACKAGE_NAME==VERSION (resolved via the package index)
  - a URL to a source archive (file://, http://, https://)
  - a local path to a source archive
  - a local directory containing setup.py

Examples:
  wheelhouse create flask==2.0.0
  wheelhouse create ~/src/myproject -t tar.gz -o ./dist
  wheelhouse create myproject --pip /py38/bin/pip --pip /py311/bin/pip
  wheelhouse create myproject -r requirements.txt --validate`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	flags := createCmd.Flags()
	flags.StringSliceVarP(&createRequirementFiles, "requirements-file", "r", nil,
		"also pack wheels from a requirements file (repeatable)")
	flags.StringVarP(&createFormat, "format", "t", "",
		"archive format: zip or tar.gz (default from config)")
	flags.BoolVarP(&createForce, "force", "f", false,
		"overwrite an existing output archive")
	flags.BoolVar(&createKeepWheels, "keep-wheels", false,
		"keep the wheels directory after creation")
	flags.StringVarP(&createOutputDir, "output-directory", "o", "",
		"output directory for the archive")
	flags.StringSliceVar(&createPyVers, "pyver", nil,
		"explicit supported Python versions, e.g. 27, 311 (repeatable)")
	flags.StringVar(&createBuildTag, "build-tag", "",
		"a build number for the archive")
	flags.BoolVar(&createValidate, "validate", false,
		"run a post-creation validation on the archive")
	flags.StringVarP(&createWheelArgs, "wheel-args", "a", "",
		"additional arguments for pip wheel (e.g. \"--no-cache-dir -c constraints.txt\")")
	flags.StringSliceVar(&createPipPaths, "pip", nil,
		"pip executable used for building wheels (repeatable)")
	flags.StringVar(&createPlatform, "supported-platform", "",
		"platform tag to declare instead of the derived one (e.g. linux_x86_64)")
	flags.StringSliceVar(&createExclude, "exclude", nil,
		"package whose wheels are dropped from the archive (repeatable)")
	flags.StringSliceVar(&createAddFiles, "add-file", nil,
		"extra file to include in the archive (repeatable)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	lifecycle := newLifecycleContext()

	outputDir := createOutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDirectory
	}
	format := createFormat
	if format == "" {
		format = cfg.DefaultFormat
	}

	archivePath, err := lifecycle.Create(cmd.Context(), wheelhouse.CreateOptions{
		Source:            args[0],
		RequirementFiles:  createRequirementFiles,
		Force:             createForce,
		KeepWheels:        createKeepWheels,
		OutputDir:         outputDir,
		PythonVersions:    createPyVers,
		Validate:          createValidate,
		WheelArgs:         createWheelArgs,
		Format:            format,
		BuildTag:          createBuildTag,
		PipPaths:          createPipPaths,
		SupportedPlatform: createPlatform,
		ExcludedPackages:  createExclude,
		AddFiles:          createAddFiles,
	})
	if err != nil {
		return lifecycleError(err)
	}

	fmt.Printf("%s Archive created: %s\n", successIcon, PathStyle.Render(archivePath))
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wheelhouse/pkg/wheelhouse"
)

var (
	// repairValidate runs post-repair validation
	repairValidate bool
	// repairOutputDir is the destination directory for the repaired archive
	repairOutputDir string
	// repairFormat selects the compression format of the repaired archive
	repairFormat string
	// repairForce overwrites an existing destination archive
	repairForce bool
)

// repairCmd rewrites Linux wheels with auditwheel
var repairCmd = &cobra.Command{
	Use:   "repair <source>",
	Short: "Repair a wheelhouse archive",
	Long: `Use auditwheel to repair all Linux wheels in a wheelhouse archive.

Wheels built for an exact Linux platform are rewritten as portable
manylinux wheels, the descriptor is regenerated from the repaired
wheel set, and a new archive is written.

auditwheel must be installed and on the PATH. For more information,
see https://github.com/pypa/auditwheel.

Examples:
  wheelhouse repair myproject.whs
  wheelhouse repair myproject.whs --validate -o ./dist`,
	Args: cobra.ExactArgs(1),
	RunE: runRepair,
}

func init() {
	flags := repairCmd.Flags()
	flags.BoolVar(&repairValidate, "validate", false,
		"run a post-repair validation on the archive")
	flags.StringVarP(&repairOutputDir, "output-directory", "o", "",
		"output directory for the repaired archive")
	flags.StringVarP(&repairFormat, "format", "t", "",
		"archive format: zip or tar.gz (default from config)")
	flags.BoolVarP(&repairForce, "force", "f", false,
		"overwrite an existing output archive")
}

func runRepair(cmd *cobra.Command, args []string) error {
	lifecycle := newLifecycleContext()

	outputDir := repairOutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDirectory
	}
	format := repairFormat
	if format == "" {
		format = cfg.DefaultFormat
	}

	archivePath, err := lifecycle.Repair(cmd.Context(), args[0], wheelhouse.RepairOptions{
		OutputDir: outputDir,
		Format:    format,
		Validate:  repairValidate,
		Force:     repairForce,
	})
	if err != nil {
		return lifecycleError(err)
	}

	fmt.Printf("%s Archive repaired: %s\n", successIcon, PathStyle.Render(archivePath))
	return nil
}

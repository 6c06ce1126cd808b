// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wheelhouse/pkg/wheelhouse"
)

var (
	// installVenv installs into the given virtual environment
	installVenv string
	// installRequirementFiles installs additional requirements files
	installRequirementFiles []string
	// installUpgrade passes --upgrade to pip
	installUpgrade bool
	// installIgnorePlatform skips the platform compatibility check
	installIgnorePlatform bool
	// installArgs is extra arguments passed through to pip install
	installArgs string
)

// installCmd installs a wheelhouse archive
var installCmd = &cobra.Command{
	Use:   "install <source>",
	Short: "Install a wheelhouse archive",
	Long: `Install a wheelhouse archive without index access.

The source can be a local archive path or a URL to one. Unless
--ignore-platform is given, the archive's declared platform must match
this machine.

Examples:
  wheelhouse install myproject.whs
  wheelhouse install https://example.com/myproject.whs --venv ./env
  wheelhouse install myproject.whs -u --ignore-platform`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	flags := installCmd.Flags()
	flags.StringVar(&installVenv, "venv", "",
		"virtual environment to install into (default: the running environment)")
	flags.StringSliceVarP(&installRequirementFiles, "requirements-file", "r", nil,
		"a requirements file to install as well (repeatable)")
	flags.BoolVarP(&installUpgrade, "upgrade", "u", false,
		"upgrade the package if it is already installed")
	flags.BoolVar(&installIgnorePlatform, "ignore-platform", false,
		"skip the supported platform check")
	flags.StringVarP(&installArgs, "install-args", "a", "",
		"additional arguments for pip install (e.g. \"-i my_index --retries 5\")")
}

func runInstall(cmd *cobra.Command, args []string) error {
	lifecycle := newLifecycleContext()

	err := lifecycle.Install(cmd.Context(), args[0], wheelhouse.InstallOptions{
		Venv:             installVenv,
		RequirementFiles: installRequirementFiles,
		Upgrade:          installUpgrade,
		IgnorePlatform:   installIgnorePlatform,
		InstallArgs:      installArgs,
	})
	if err != nil {
		return lifecycleError(err)
	}

	fmt.Printf("%s Installed %s\n", successIcon, PathStyle.Render(args[0]))
	return nil
}

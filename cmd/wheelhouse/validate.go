// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd checks that an archive is complete and installable
var validateCmd = &cobra.Command{
	Use:   "validate <source>",
	Short: "Validate a wheelhouse archive",
	Long: `Validate a wheelhouse archive.

This checks that every wheel the descriptor lists is present in the
archive, then creates a throwaway virtual environment and installs the
package into it.

Examples:
  wheelhouse validate myproject.whs
  wheelhouse validate https://example.com/myproject.whs`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	lifecycle := newLifecycleContext()

	problems, err := lifecycle.Validate(cmd.Context(), args[0])
	if err != nil {
		return lifecycleError(err)
	}

	if len(problems) > 0 {
		fmt.Printf("%s Validation failed with %d problem(s)\n", errorIcon, len(problems))
		for i, problem := range problems {
			fmt.Printf("  %d. %s\n", i+1, problem)
		}
		return &ExitError{Code: 1}
	}

	fmt.Printf("%s Archive is valid\n", successIcon)
	return nil
}

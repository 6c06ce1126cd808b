// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// showCmd prints an archive's descriptor
var showCmd = &cobra.Command{
	Use:   "show <source>",
	Short: "Print the descriptor of a wheelhouse archive",
	Long: `Print the descriptor of a wheelhouse archive as indented JSON
with sorted keys.

Examples:
  wheelhouse show myproject.whs`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	lifecycle := newLifecycleContext()

	descriptor, err := lifecycle.Show(cmd.Context(), args[0])
	if err != nil {
		return lifecycleError(err)
	}

	// Round-trip through a map so keys print sorted.
	raw, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("encoding descriptor: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("decoding descriptor: %w", err)
	}
	sorted, err := json.MarshalIndent(fields, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding descriptor: %w", err)
	}

	fmt.Println(string(sorted))
	return nil
}

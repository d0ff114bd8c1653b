package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List leftover files of applications that are no longer installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orphans, err := buildEngine(false).Orphans(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to scan for orphans: %w", err)
		}
		if jsonFlag {
			return printJSON(buildOrphansJSON(orphans))
		}
		printOrphans(orphans)
		return nil
	},
}

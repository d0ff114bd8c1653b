package cli

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed applications with their sizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		apps := buildEngine(false).List()
		if jsonFlag {
			return printJSON(buildAppsJSON("", apps))
		}
		printAppList(apps)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search installed applications by name (case-insensitive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		apps := buildEngine(false).Search(args[0])
		if jsonFlag {
			return printJSON(buildAppsJSON(args[0], apps))
		}
		printAppList(apps)
		return nil
	},
}

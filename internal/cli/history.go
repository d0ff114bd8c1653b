package cli

import (
	"fmt"

	"github.com/lu-zhengda/appsweep/internal/history"
	"github.com/lu-zhengda/appsweep/internal/utils"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past removals and the total space reclaimed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h := history.New(history.DefaultPath())
		stats := h.Stats(historyLimit)

		if jsonFlag {
			return printJSON(buildHistoryJSON(stats))
		}

		printHistory(stats)
		return nil
	},
}

func printHistory(stats history.Stats) {
	fmt.Println("appsweep -- Removal History")
	fmt.Println()

	if stats.TotalRemovals == 0 {
		fmt.Println("  No removals recorded yet. Run 'appsweep remove <name>' to get started.")
		fmt.Println()
		return
	}

	fmt.Printf("  Total freed all-time:  %s\n", utils.FormatSize(stats.TotalFreed))
	fmt.Printf("  Applications removed:  %d\n", stats.TotalRemovals)
	fmt.Printf("  Items deleted:         %d\n", stats.TotalItems)

	if len(stats.Recent) > 0 {
		fmt.Println()
		fmt.Println("  Recent:")

		for _, e := range stats.Recent {
			label := "items"
			if e.Items == 1 {
				label = "item"
			}
			failed := ""
			if e.Failures > 0 {
				failed = failStyle.Render(fmt.Sprintf("  (%d failed)", e.Failures))
			}
			fmt.Printf("    %s  %-24s %3d %-5s  %10s%s\n",
				e.Timestamp.Format("2006-01-02 15:04"),
				truncatePath(e.App, 24),
				e.Items,
				label,
				utils.FormatSize(e.BytesFreed),
				failed)
		}
	}

	fmt.Println()
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of recent removals to show (0 for all)")
}

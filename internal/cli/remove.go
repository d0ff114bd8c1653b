package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/lu-zhengda/appsweep/internal/utils"
	"github.com/spf13/cobra"
)

var (
	removeYes    bool
	removeDryRun bool
	removeNoQuit bool
)

var errNotConfirmed = errors.New("stdin is not a terminal, pass --yes to confirm removal")

var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"uninstall"},
	Short:   "Remove an application and its leftover files",
	Long: "Remove an application bundle and every file under ~/Library attributed to it.\n" +
		"<name> may be the bundle filename (with or without .app), its display name or an absolute bundle path.\n" +
		"Files are deleted permanently, not moved to the Trash.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e := buildEngine(removeNoQuit)

		p, err := e.PlanByName(ctx, args[0])
		if err != nil {
			return err
		}

		if removeDryRun {
			if jsonFlag {
				return printJSON(buildPlanJSON(p))
			}
			printPlan(p)
			return nil
		}

		if !jsonFlag {
			printPlan(p)
		}

		if !removeYes {
			if jsonFlag || !stdinIsTerminal() {
				return errNotConfirmed
			}
			prompt := fmt.Sprintf("\nPermanently remove %s and %d leftover items (%s)?",
				p.App.Name, len(p.Residuals), utils.FormatSize(p.TotalSize))
			if !confirmAction(os.Stdin, os.Stdout, prompt) {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		res := e.Remove(ctx, p)

		if jsonFlag {
			if err := printJSON(buildRemoveJSON(p, res)); err != nil {
				return err
			}
		} else {
			fmt.Println()
			printResult(res)
		}

		if res.NeedsPrivileges() {
			fmt.Fprintln(os.Stderr, "\nSome items need elevated permissions. Try: sudo appsweep remove "+quoteArg(args[0]))
		}

		if !res.OK() {
			return fmt.Errorf("failed to remove %s: %w", p.App.Name, res.Bundle.Err)
		}
		return nil
	},
}

// quoteArg quotes s for display in a shell command suggestion.
func quoteArg(s string) string {
	for _, r := range s {
		switch r {
		case ' ', '\'', '"', '\\', '$', '`', '&', '(', ')', ';', '|', '<', '>', '*', '?':
			return fmt.Sprintf("%q", s)
		}
	}
	return s
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "Skip the confirmation prompt")
	removeCmd.Flags().BoolVar(&removeDryRun, "dry-run", false, "Show what would be removed without deleting anything")
	removeCmd.Flags().BoolVar(&removeNoQuit, "no-quit", false, "Do not try to quit the application before removing it")
}

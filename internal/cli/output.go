package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lu-zhengda/appsweep/internal/catalog"
	"github.com/lu-zhengda/appsweep/internal/plan"
	"github.com/lu-zhengda/appsweep/internal/remover"
	"github.com/lu-zhengda/appsweep/internal/scanner"
	"github.com/lu-zhengda/appsweep/internal/utils"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func init() {
	// NO_COLOR (https://no-color.org/) and dumb terminals get plain text.
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func printAppList(apps []catalog.AppInfo) {
	if len(apps) == 0 {
		fmt.Println("No applications found.")
		return
	}

	var total int64
	for _, a := range apps {
		total += a.Size
		fmt.Printf("  %-32s %10s  %s\n",
			truncatePath(a.Name, 32),
			utils.FormatSize(a.Size),
			mutedStyle.Render(bundleIDOrDash(a.BundleID)))
	}
	fmt.Printf("\n%d applications, %s\n", len(apps), utils.FormatSize(total))
}

func printPlan(p plan.Plan) {
	fmt.Printf("\n%s", p.App.Name)
	if p.App.Version != "" {
		fmt.Printf(" %s", p.App.Version)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  Path:       %s\n", p.App.Path)
	fmt.Printf("  Bundle ID:  %s\n", bundleIDOrDash(p.App.BundleID))
	fmt.Printf("  Bundle:     %s\n", utils.FormatSize(p.App.Size))

	if len(p.Residuals) == 0 {
		fmt.Println("\n  No leftover files found.")
	} else {
		fmt.Printf("\n  Leftovers (%d):\n", len(p.Residuals))
		for _, r := range p.Residuals {
			fmt.Printf("    %-46s %10s  %s\n",
				truncatePath(r.Path, 46),
				utils.FormatSize(r.Size),
				matchLabel(r.MatchedBy))
		}
	}

	fmt.Printf("\nTotal reclaimable: %s\n", utils.FormatSize(p.TotalSize))
	if line := breakdownLine(planBreakdown(p)); line != "" {
		fmt.Printf("  %s\n", line)
	}
}

func printResult(res remover.Result) {
	for _, o := range append([]remover.Outcome{res.Bundle}, res.Residuals...) {
		if o.OK() {
			fmt.Printf("  %s %s\n", okStyle.Render("removed"), o.Path)
		} else {
			fmt.Printf("  %s %s (%v)\n", failStyle.Render("failed"), o.Path, o.Err)
		}
	}
	fmt.Printf("\nFreed %s, %d removed, %d failed.\n",
		utils.FormatSize(res.Freed()), res.Removed(), len(res.Failures()))
}

func printOrphans(orphans []scanner.Orphan) {
	if len(orphans) == 0 {
		fmt.Println("No orphaned files found.")
		return
	}

	var total int64
	for _, o := range orphans {
		total += o.Size
		fmt.Printf("  %-46s %10s  %s\n",
			truncatePath(o.Path, 46),
			utils.FormatSize(o.Size),
			mutedStyle.Render(o.AppName))
	}
	fmt.Printf("\n%d orphaned items, %s\n", len(orphans), utils.FormatSize(total))
}

func matchLabel(m scanner.MatchField) string {
	if m == scanner.MatchBundleID {
		return idStyle.Render("[id]")
	}
	return nameStyle.Render("[name]")
}

func bundleIDOrDash(id string) string {
	if id == "" {
		return "-"
	}
	return id
}

// Breakdown holds plan bytes grouped by how each path was attributed.
type Breakdown struct {
	Bundle int64 `json:"bundle"`
	ByID   int64 `json:"by_bundle_id"`
	ByName int64 `json:"by_name"`
	Total  int64 `json:"total"`
}

func planBreakdown(p plan.Plan) Breakdown {
	b := Breakdown{Bundle: p.App.Size, Total: p.TotalSize}
	for _, r := range p.Residuals {
		switch r.MatchedBy {
		case scanner.MatchBundleID:
			b.ByID += r.Size
		case scanner.MatchName:
			b.ByName += r.Size
		}
	}
	return b
}

// breakdownLine renders a colored summary. Returns "" when there are no
// leftovers to break down.
func breakdownLine(b Breakdown) string {
	if b.Total == 0 || b.ByID+b.ByName == 0 {
		return ""
	}

	pct := func(n int64) int {
		return int(float64(n) / float64(b.Total) * 100)
	}

	parts := []string{
		fmt.Sprintf("Bundle: %s (%d%%)", utils.FormatSize(b.Bundle), pct(b.Bundle)),
	}
	if b.ByID > 0 {
		parts = append(parts, idStyle.Render(
			fmt.Sprintf("By id: %s (%d%%)", utils.FormatSize(b.ByID), pct(b.ByID))))
	}
	if b.ByName > 0 {
		parts = append(parts, nameStyle.Render(
			fmt.Sprintf("By name: %s (%d%%)", utils.FormatSize(b.ByName), pct(b.ByName))))
	}
	return strings.Join(parts, "  ")
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}

// confirmAction prompts on out and reads one line from in.
func confirmAction(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	return isAffirmative(line)
}

// isAffirmative accepts y, yes and the Portuguese s, sim.
func isAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "sim":
		return true
	}
	return false
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

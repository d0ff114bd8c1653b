package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Color palette -- single source of truth for all TUI colors.
// Values are ANSI-256 color codes passed to lipgloss.Color().
// ---------------------------------------------------------------------------

var (
	colorPrimary   = lipgloss.Color("170")
	colorSecondary = lipgloss.Color("212")
	colorSuccess   = lipgloss.Color("82")
	colorWarning   = lipgloss.Color("214")
	colorDanger    = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")
	colorSubtle    = lipgloss.Color("236")
	colorText      = lipgloss.Color("252")
	colorDangerBg  = lipgloss.Color("52")
)

// ---------------------------------------------------------------------------
// Location colors -- one per Library scan root.
// ---------------------------------------------------------------------------

var locationColors = map[string]lipgloss.Color{
	"Application Support":     lipgloss.Color("75"),
	"Caches":                  lipgloss.Color("214"),
	"Preferences":             lipgloss.Color("141"),
	"Logs":                    lipgloss.Color("223"),
	"Saved Application State": lipgloss.Color("39"),
	"Containers":              lipgloss.Color("119"),
	"Group Containers":        lipgloss.Color("208"),
	"Application Scripts":     lipgloss.Color("183"),
	"WebKit":                  lipgloss.Color("220"),
	"LaunchAgents":            lipgloss.Color("173"),
}

// locationColor returns the theme color for a Library subdirectory.
// Unknown locations fall back to colorPrimary.
func locationColor(name string) lipgloss.Color {
	if c, ok := locationColors[name]; ok {
		return c
	}
	return colorPrimary
}

// ---------------------------------------------------------------------------
// Bar colors -- share of an application's total footprint.
// ---------------------------------------------------------------------------

var (
	barColorHigh   = lipgloss.Color("196")
	barColorMedium = lipgloss.Color("214")
	barColorLow    = lipgloss.Color("82")
)

// barColor returns a color based on a 0.0-1.0 ratio.
//   - >= 0.75 -> high (red)
//   - >= 0.40 -> medium (orange/yellow)
//   - < 0.40  -> low (green)
func barColor(ratio float64) lipgloss.Color {
	switch {
	case ratio >= 0.75:
		return barColorHigh
	case ratio >= 0.40:
		return barColorMedium
	default:
		return barColorLow
	}
}

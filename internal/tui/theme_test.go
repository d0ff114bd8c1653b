package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLocationColor(t *testing.T) {
	tests := []struct {
		name string
		want lipgloss.Color
	}{
		{"Application Support", lipgloss.Color("75")},
		{"Caches", lipgloss.Color("214")},
		{"Preferences", lipgloss.Color("141")},
		{"Group Containers", lipgloss.Color("208")},
		{"LaunchAgents", lipgloss.Color("173")},
		{"Cookies", colorPrimary},
		{"", colorPrimary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := locationColor(tt.name); got != tt.want {
				t.Errorf("locationColor(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestBarColor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  lipgloss.Color
	}{
		{1.00, barColorHigh},
		{0.80, barColorHigh},
		{0.75, barColorHigh},
		{0.74, barColorMedium},
		{0.50, barColorMedium},
		{0.40, barColorMedium},
		{0.39, barColorLow},
		{0.10, barColorLow},
		{0.00, barColorLow},
	}
	for _, tt := range tests {
		if got := barColor(tt.ratio); got != tt.want {
			t.Errorf("barColor(%.2f) = %v, want %v", tt.ratio, got, tt.want)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	bar := renderProgressBar(0.5, 10)
	if strings.Count(bar, "█") != 5 || strings.Count(bar, "░") != 5 {
		t.Errorf("unexpected bar %q", bar)
	}
	if got := renderProgressBar(0.01, 10); strings.Count(got, "█") != 1 {
		t.Errorf("non-zero ratio should fill at least one cell, got %q", got)
	}
	if got := renderProgressBar(2, 4); strings.Count(got, "█") != 4 {
		t.Errorf("ratio should clamp to 1, got %q", got)
	}
}

func TestRenderHeader(t *testing.T) {
	h := renderHeader("Applications", "Foo")
	if !strings.Contains(h, "appsweep > Applications > Foo") {
		t.Errorf("unexpected header %q", h)
	}
}

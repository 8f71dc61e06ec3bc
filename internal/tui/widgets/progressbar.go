// ABOUTME: Compact progress bar for ratios shown inside metric blocks
// ABOUTME: Higher is better: the color moves from red through amber to green

package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Thresholds for LevelForPercent
const (
	WarnBelow = 80.0
	CritBelow = 50.0
)

// LevelForPercent grades a ratio where higher is better
func LevelForPercent(percent float64) StatusLevel {
	switch {
	case percent < CritBelow:
		return StatusCritical
	case percent < WarnBelow:
		return StatusWarning
	default:
		return StatusOK
	}
}

// CompactProgressBar renders a minimal progress bar for tight spaces
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}
	percent = max(0, min(percent, 100))

	filled := int(percent / 100.0 * float64(width))
	empty := width - filled

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("▓", filled)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(strings.Repeat("░", empty))
}

// ABOUTME: Compact metric block widget for dashboard displays
// ABOUTME: Combines icon, value and subtitle (or a ratio bar) in a titled box

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/materialhub/materialhub-cli/internal/tui/icons"
)

// MetricBlockConfig holds configuration for a metric block
type MetricBlockConfig struct {
	Width       int
	BorderColor lipgloss.Color
	TitleColor  lipgloss.Color
	ValueColor  lipgloss.Color
}

// DefaultMetricBlockConfig returns sensible defaults
func DefaultMetricBlockConfig() MetricBlockConfig {
	return MetricBlockConfig{
		Width:       24,
		BorderColor: lipgloss.Color("#6B7280"),
		TitleColor:  lipgloss.Color("#F97316"),
		ValueColor:  lipgloss.Color("#F9FAFB"),
	}
}

var subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

// MetricBlock renders a compact metric display block
func MetricBlock(icon icons.Icon, title, value, subtitle string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 24
	}
	inner := config.Width - 4

	valueStyle := lipgloss.NewStyle().Foreground(config.ValueColor).Bold(true)
	return box(icon, title, config, []string{
		valueStyle.Render(truncate(value, inner)),
		subtitleStyle.Render(truncate(subtitle, inner)),
	})
}

// CountBlock renders a simple count metric
func CountBlock(icon icons.Icon, title string, count int, label string, config MetricBlockConfig) string {
	return MetricBlock(icon, title, fmt.Sprintf("%d", count), label, config)
}

// MetricBlockWithBar renders a ratio with its percentage and a bar
func MetricBlockWithBar(icon icons.Icon, title string, percent float64, details string, config MetricBlockConfig) string {
	if config.Width <= 0 {
		config.Width = 24
	}
	inner := config.Width - 4

	level := LevelForPercent(percent)
	color, _ := colors(level)
	if level == StatusOK {
		color = BadgeOKBg
	}

	value := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%3.0f%%", percent)) +
		" " + StatusIcon(level)

	return box(icon, title, config, []string{
		value,
		CompactProgressBar(percent, inner, color),
		subtitleStyle.Render(truncate(details, inner)),
	})
}

// box draws the bordered block with the title set into the top border
func box(icon icons.Icon, title string, config MetricBlockConfig, lines []string) string {
	inner := config.Width - 4
	borderStyle := lipgloss.NewStyle().Foreground(config.BorderColor)
	titleStyle := lipgloss.NewStyle().Foreground(config.TitleColor)

	// "┌─ " + title + " " + at least one dash + "┐"
	titleStr := truncate(fmt.Sprintf("%s %s", icon.String(), title), config.Width-6)
	out := []string{
		borderStyle.Render("┌─ ") + titleStyle.Render(titleStr) +
			borderStyle.Render(" "+strings.Repeat("─", max(0, config.Width-5-lipgloss.Width(titleStr)))+"┐"),
	}
	for _, l := range lines {
		pad := max(0, inner-lipgloss.Width(l))
		out = append(out, borderStyle.Render("│ ")+" "+l+strings.Repeat(" ", pad)+borderStyle.Render("│"))
	}
	out = append(out, borderStyle.Render("└"+strings.Repeat("─", config.Width-2)+"┘"))
	return strings.Join(out, "\n")
}

// truncate shortens a string to maxLen cells with an ellipsis if needed
func truncate(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 1 {
		return string(r[:max(0, maxLen)])
	}
	for len(r) > 0 && lipgloss.Width(string(r))+1 > maxLen {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

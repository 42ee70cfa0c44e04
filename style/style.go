// Package style provides a functional API for composing and applying lipgloss-based terminal styles.
package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// New returns an empty lipgloss.Style used as a foundation for visual composition.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored initializes a new style with the specified foreground and background colors.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a stateless rendering function that applies the specified foreground color to a string.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders a padded banner in the accent color.
var Title = func(s string) string {
	return Colored(lipgloss.Color("230"), AccentColor).Padding(0, 1).Render(s)
}

// Tag returns a rendering function that encapsulates a string in a colored, padded tag block.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(fg, bg).Padding(0, 1).Render(s) }
}

// Gauge draws a horizontal cell bar filled to frac (0..1).
func Gauge(width int, frac float64, c lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}

	filled := int(frac*float64(width) + 0.5)
	return Fg(c)(strings.Repeat("█", filled)) + Fg(FaintColor)(strings.Repeat("░", width-filled))
}

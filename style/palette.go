package style

import "github.com/charmbracelet/lipgloss"

// Base terminal colors (ANSI 8).
var (
	Red    = lipgloss.Color("1")
	Green  = lipgloss.Color("2")
	Yellow = lipgloss.Color("3")
	Blue   = lipgloss.Color("4")
	Purple = lipgloss.Color("5")
	Cyan   = lipgloss.Color("6")
	White  = lipgloss.Color("7")
	Gray   = lipgloss.Color("#808080")
)

// Overlay palette.
var (
	Text    = lipgloss.Color("#cdd6f4")
	Subtext = lipgloss.Color("#a6adc8")
	Surface = lipgloss.Color("#313244")

	AccentColor = lipgloss.Color("#cba6f7")
	SeekColor   = lipgloss.Color("#89b4fa")
	VolumeColor = lipgloss.Color("#a6e3a1")
	BoostColor  = lipgloss.Color("#fab387")
	LightColor  = lipgloss.Color("#f9e2af")
	SpeedColor  = lipgloss.Color("#f5c2e7")
	ZoomColor   = lipgloss.Color("#94e2d5")
	HiRed       = lipgloss.Color("#f38ba8")
	FaintColor  = lipgloss.Color("#6c7086")
)

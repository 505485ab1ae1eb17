// Package theme holds the shared palette and lipgloss styles.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	ColorBlue   = lipgloss.Color("39")
	ColorAccent = lipgloss.Color("86")
	ColorPink   = lipgloss.Color("205")
	ColorGreen  = lipgloss.Color("42")
	ColorRed    = lipgloss.Color("196")
	ColorOrange = lipgloss.Color("208")
	ColorYellow = lipgloss.Color("220")
	ColorGray   = lipgloss.Color("241")
	ColorDim    = lipgloss.Color("238")
	ColorWhite  = lipgloss.Color("252")
	ColorBlack  = lipgloss.Color("16")
)

// Text styles.
var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	Subtitle = lipgloss.NewStyle().Foreground(ColorGray)
	Muted    = lipgloss.NewStyle().Foreground(ColorGray)
	Bold     = lipgloss.NewStyle().Bold(true)
	Error    = lipgloss.NewStyle().Foreground(ColorRed)
	Warning  = lipgloss.NewStyle().Foreground(ColorOrange)
	Success  = lipgloss.NewStyle().Foreground(ColorGreen)
	Link     = lipgloss.NewStyle().Foreground(ColorBlue).Underline(true)
	Selected = lipgloss.NewStyle().Background(ColorDim).Foreground(ColorWhite)
	Header   = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite)
)

// Buttons.
var (
	Button         = lipgloss.NewStyle().Foreground(ColorWhite).Background(ColorDim).Padding(0, 1)
	ButtonFocused  = lipgloss.NewStyle().Foreground(ColorBlack).Background(ColorAccent).Bold(true).Padding(0, 1)
	ButtonDanger   = lipgloss.NewStyle().Foreground(ColorWhite).Background(ColorRed).Bold(true).Padding(0, 1)
	ButtonDisabled = lipgloss.NewStyle().Foreground(ColorDim).Padding(0, 1)
)

// Panels.
var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPink).
		Padding(0, 1)
	PanelDanger = Panel.BorderForeground(ColorRed)
	Card        = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)

// StatusColor maps an asset status value to a badge color.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "available":
		return ColorGreen
	case "assigned":
		return ColorBlue
	case "in_maintenance":
		return ColorOrange
	case "retired":
		return ColorGray
	case "disposed":
		return ColorRed
	default:
		return ColorWhite
	}
}

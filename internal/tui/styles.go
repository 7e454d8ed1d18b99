package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#FF66AA")
	colorOK      = lipgloss.Color("#5FD787")
	colorSubText = lipgloss.Color("#7D7D7D")
	colorError   = lipgloss.Color("#FF5555")
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(colorSubText).
			Faint(true).
			MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubText).
			Padding(1, 2)

	invalidBoxStyle = boxStyle.BorderForeground(colorError)

	selectedStyle = lipgloss.NewStyle().Reverse(true)
	enabledStyle  = lipgloss.NewStyle().Foreground(colorOK).Bold(true).Underline(true)
	detectedStyle = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(colorSubText)
	hintStyle     = lipgloss.NewStyle().Foreground(colorSubText).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(colorOK)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
)

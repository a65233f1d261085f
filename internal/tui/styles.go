package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the discovery viewer
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - found devices
	ErrorColor   = lipgloss.Color("#FF5555") // Red - failed devices
	WarningColor = lipgloss.Color("#FFA500") // Orange - in-flight pipelines
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

var (
	// TitleStyle is for the screen title
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			PaddingLeft(2)

	// StatusStyle is for the session status line
	StatusStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)

	// SpinnerStyle is for the scanning spinner
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// FoundStyle marks a completed device
	FoundStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	// FailedStyle marks a failed device
	FailedStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// PendingStyle marks a device whose pipeline is still running
	PendingStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// HelpStyle is for the footer key hints
	HelpStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(2)
)

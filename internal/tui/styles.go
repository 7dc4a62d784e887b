package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Header style
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#00ADD8")).
			Padding(0, 1)

	// Question styles
	questionStyle = lipgloss.NewStyle().
			Bold(true)

	answeredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))

	// Footer style
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	// Error style
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

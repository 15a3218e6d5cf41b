package session

import "github.com/charmbracelet/lipgloss"

// Dracula color scheme.
var (
	Foreground = lipgloss.Color("#f8f8f2")
	Cyan       = lipgloss.Color("#8be9fd")
	Green      = lipgloss.Color("#50fa7b")
	Red        = lipgloss.Color("#ff5555")
	Yellow     = lipgloss.Color("#f1fa8c")
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	ruleStyle    = lipgloss.NewStyle().Foreground(Cyan)
	promptStyle  = lipgloss.NewStyle().Foreground(Yellow)
	inputStyle   = lipgloss.NewStyle().Foreground(Green)
	successStyle = lipgloss.NewStyle().Foreground(Green)
	errorStyle   = lipgloss.NewStyle().Foreground(Red)
	answerStyle  = lipgloss.NewStyle().Foreground(Foreground).Bold(true)
)

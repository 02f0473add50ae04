package quiz

import "charm.land/lipgloss/v2"

var (
	colorPrimary = lipgloss.Color("#8B5CF6")
	colorAccent  = lipgloss.Color("#F97316")
	colorSuccess = lipgloss.Color("#22C55E")
	colorError   = lipgloss.Color("#F43F5E")
	colorText    = lipgloss.Color("#F8FAFC")
	colorDim     = lipgloss.Color("#94A3B8")
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(colorDim)
	questionStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	optionStyle   = lipgloss.NewStyle().Foreground(colorText)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	correctStyle  = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	wrongStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	warnStyle     = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)

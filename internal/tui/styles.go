package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/n0roo/ikd-kit/internal/pattern"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Yellow
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	// 패턴 검증 상태
	acceptedStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	intermediateStyle = lipgloss.NewStyle().
				Foreground(warningColor)

	rejectedStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	hiddenStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Strikethrough(true)

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(mutedColor)

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(primaryColor).
			Bold(true).
			Underline(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#374151")).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true).
				PaddingLeft(1).
				PaddingRight(1)

	normalItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(28)

	relabeledStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)
)

// StateIcon renders the validation state of a field
func StateIcon(s pattern.State) string {
	switch s {
	case pattern.Accepted:
		return acceptedStyle.Render("●")
	case pattern.Intermediate:
		return intermediateStyle.Render("○")
	default:
		return rejectedStyle.Render("✗")
	}
}

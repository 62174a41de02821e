package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/aliskhannn/debt-notifier/internal/presentation"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	badgeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#DC2626")).Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB"))
	tabStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#9CA3AF"))
	activeTab   = tabStyle.Foreground(lipgloss.Color("#F9FAFB")).Underline(true)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// toastStyle draws a toast with the border color of its type.
func toastStyle(s presentation.Style) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(s.Color)).
		Padding(0, 1)
}

func accent(s presentation.Style) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.Color))
}

package tui

import "github.com/charmbracelet/lipgloss"

const (
	accent  = lipgloss.Color("212")
	muted   = lipgloss.Color("241")
	subtle  = lipgloss.Color("245")
	text    = lipgloss.Color("252")
	info    = lipgloss.Color("111")
	good    = lipgloss.Color("78")
	warning = lipgloss.Color("214")
	bad     = lipgloss.Color("196")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	subtitleStyle = lipgloss.NewStyle().Foreground(subtle)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	listItemStyle = lipgloss.NewStyle().Foreground(text)
	detailStyle   = lipgloss.NewStyle().Foreground(info)
	helpStyle     = lipgloss.NewStyle().Foreground(muted).PaddingLeft(2)
	dimStyle      = lipgloss.NewStyle().Foreground(muted)

	successStyle = lipgloss.NewStyle().Foreground(good)
	warnStyle    = lipgloss.NewStyle().Foreground(warning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(bad)
)

// Warn styles a one-line CLI warning.
func Warn(s string) string { return warnStyle.Render(s) }

// Error styles a one-line CLI error.
func Error(s string) string { return errorStyle.Render(s) }

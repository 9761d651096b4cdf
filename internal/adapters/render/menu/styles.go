package menu

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	sentinel   lipgloss.Style
	row        lipgloss.Style
	rowMissing lipgloss.Style
	hint       lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		sentinel:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		row:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		rowMissing: lipgloss.NewStyle().Faint(true),
		hint:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

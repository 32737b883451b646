package game

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	narrative  lipgloss.Style
	option     lipgloss.Style
	optionIdx  lipgloss.Style
	effect     lipgloss.Style
	money      lipgloss.Style
	negative   lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	metricKey  lipgloss.Style
	lesson     lipgloss.Style
	rank       lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		narrative:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		option:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		optionIdx:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		effect:     lipgloss.NewStyle().Faint(true),
		money:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		negative:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		metricKey:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		lesson:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("221")),
		rank:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

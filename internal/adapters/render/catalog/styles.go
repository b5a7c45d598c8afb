package catalog

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	assetName  lipgloss.Style
	selected   lipgloss.Style
	badge      lipgloss.Style
	detail     lipgloss.Style
	tags       lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	sectionKey lipgloss.Style
	empty      lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
	prompt     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		assetName:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		selected:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
		badge:      lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		tags:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		sectionKey: lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("250")),
		empty:      lipgloss.NewStyle().Faint(true),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		prompt:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
}

// swatch renders a block in the collection colour.
func swatch(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

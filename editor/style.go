package editor

import "github.com/charmbracelet/lipgloss"

// Style controls the editor's rendering.
type Style struct {
	Gutter        lipgloss.Style
	LineNum       lipgloss.Style
	LineNumActive lipgloss.Style

	Text        lipgloss.Style
	Selection   lipgloss.Style
	Cursor      lipgloss.Style
	Ghost       lipgloss.Style
	Misspelled  lipgloss.Style
	Badge       lipgloss.Style
	Status      lipgloss.Style
	ActionsMenu lipgloss.Style
}

func DefaultStyle() Style {
	gutter := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	return Style{
		Gutter:        gutter,
		LineNum:       gutter,
		LineNumActive: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Bold(true),
		Text:          lipgloss.NewStyle(),
		Selection:     lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:        lipgloss.NewStyle().Reverse(true),
		Ghost:         lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Faint(true),
		Misspelled:    lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("203")),
		Badge:         lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Faint(true),
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")),
		ActionsMenu:   lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")),
	}
}

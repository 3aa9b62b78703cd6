package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles are bound to one output so colors follow that writer's terminal
type styles struct {
	header    lipgloss.Style
	title     lipgloss.Style
	id        lipgloss.Style
	count     lipgloss.Style
	date      lipgloss.Style
	assistant lipgloss.Style
	user      lipgloss.Style
	hint      lipgloss.Style
	err       lipgloss.Style
	active    lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")),
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		id: r.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true),
		count: r.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true),
		date: r.NewStyle().
			Foreground(lipgloss.Color("243")),
		assistant: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		user: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("135")),
		hint: r.NewStyle().
			Foreground(lipgloss.Color("241")),
		err: r.NewStyle().
			Foreground(lipgloss.Color("196")),
		active: r.NewStyle().
			Foreground(lipgloss.Color("42")),
	}
}

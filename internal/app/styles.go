package app

import "charm.land/lipgloss/v2"

var (
	colorBorder  = lipgloss.Color("#292e42") // Subtle borders
	colorFocused = lipgloss.Color("#7aa2f7") // Blue highlight
	colorMuted   = lipgloss.Color("#565f89") // Dimmed text
	colorWarning = lipgloss.Color("#e0af68") // Amber
	colorError   = lipgloss.Color("#f7768e") // Red
)

type styles struct {
	Pane       lipgloss.Style
	ClosedPane lipgloss.Style
	Cursor     lipgloss.Style
	Status     lipgloss.Style
	Scrolled   lipgloss.Style
	Closed     lipgloss.Style
	Help       lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFocused),
		ClosedPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder),
		Cursor:   lipgloss.NewStyle().Reverse(true),
		Status:   lipgloss.NewStyle().Foreground(colorMuted),
		Scrolled: lipgloss.NewStyle().Foreground(colorWarning),
		Closed:   lipgloss.NewStyle().Foreground(colorError),
		Help:     lipgloss.NewStyle().Foreground(colorMuted).Faint(true),
	}
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/homelabdash/homelabdash/internal/catalog"
)

// Palette, matching the web stylesheet.
const (
	colorText        = "#E2E8F0"
	colorMuted       = "#94A3B8"
	colorBorder      = "#334155"
	colorAccent      = "#38BDF8"
	colorOnline      = "#22C55E"
	colorOffline     = "#EF4444"
	colorMaintenance = "#F59E0B"
)

type styles struct {
	title, subtitle, muted, statLabel, statValue lipgloss.Style
	filter, filterActive                         lipgloss.Style
	card, cardName                               lipgloss.Style
	pill                                         map[catalog.Status]lipgloss.Style
	pillDefault                                  lipgloss.Style
	link, help                                   lipgloss.Style
}

func newStyles() styles {
	pill := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), false, true)

	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorText)),
		subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		statLabel: lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
		statValue: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorText)),
		filter: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color(colorText)),
		filterActive: lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("#0F172A")).
			Background(lipgloss.Color(colorAccent)),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1).
			MarginBottom(1),
		cardName: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorText)),
		pill: map[catalog.Status]lipgloss.Style{
			catalog.StatusOnline:      pill.Foreground(lipgloss.Color(colorOnline)).BorderForeground(lipgloss.Color(colorOnline)),
			catalog.StatusOffline:     pill.Foreground(lipgloss.Color(colorOffline)).BorderForeground(lipgloss.Color(colorOffline)),
			catalog.StatusMaintenance: pill.Foreground(lipgloss.Color(colorMaintenance)).BorderForeground(lipgloss.Color(colorMaintenance)),
		},
		pillDefault: pill.Foreground(lipgloss.Color(colorMuted)).BorderForeground(lipgloss.Color(colorBorder)),
		link:        lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent)).Underline(true),
		help:        lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)),
	}
}

// pillStyle returns the badge style for a status. Unknown statuses get the
// neutral style.
func (s styles) pillStyle(status catalog.Status) lipgloss.Style {
	if style, ok := s.pill[status]; ok {
		return style
	}
	return s.pillDefault
}

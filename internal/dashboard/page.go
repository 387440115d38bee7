package dashboard

import (
	"github.com/homelabdash/homelabdash/internal/catalog"
	"github.com/homelabdash/homelabdash/internal/source"
)

// Display text.
const (
	Title          = "Homelab Dashboard"
	Subtitle       = "Quick links & status for lab"
	LoadingMessage = "Loading services from services.json…"
	EmptyMessage   = "No services match that filter/search."
	NoNotes        = "No notes."
	NotSet         = "Not set"
	SearchHint     = "Search by name, type, or notes..."
)

// Page is everything a front-end needs to render the dashboard.
type Page struct {
	Phase source.Phase

	// Message is the loading or failure text. Empty once loaded.
	Message string

	Filter catalog.Filter
	Search string
	Stats  catalog.Counts

	// Cards is nil unless the page is loaded.
	Cards []Card
}

// Card is one rendered service.
type Card struct {
	ID         string
	Name       string
	Type       string
	Status     string
	BadgeClass string
	Known      bool
	Notes      string
	URL        string
}

// HasURL reports whether the card links somewhere.
func (c Card) HasURL() bool {
	return c.URL != ""
}

// URLText is the link text, or the placeholder when no URL is set.
func (c Card) URLText() string {
	if c.URL == "" {
		return NotSet
	}
	return c.URL
}

// ShowGrid reports whether the card grid (or its empty message) is shown.
func (p Page) ShowGrid() bool {
	return p.Phase == source.PhaseLoaded
}

// Empty reports a loaded page with no matching records.
func (p Page) Empty() bool {
	return p.ShowGrid() && len(p.Cards) == 0
}

// BuildPage derives the page for a load state and view inputs.
func BuildPage(load source.LoadState, filter catalog.Filter, search string) Page {
	view := catalog.Reduce(load.Records(), filter, search)

	page := Page{
		Phase:  load.Phase,
		Filter: filter,
		Search: search,
		Stats:  view.Counts,
	}

	switch load.Phase {
	case source.PhaseLoading:
		page.Message = LoadingMessage
	case source.PhaseFailed:
		page.Message = load.Message
	case source.PhaseLoaded:
		page.Cards = make([]Card, 0, len(view.Records))
		for _, r := range view.Records {
			page.Cards = append(page.Cards, NewCard(r))
		}
	}

	return page
}

// NewCard applies the display fallbacks to a record.
func NewCard(r catalog.Record) Card {
	notes := r.Notes
	if notes == "" {
		notes = NoNotes
	}

	return Card{
		ID:         string(r.ID),
		Name:       r.Name,
		Type:       r.Type,
		Status:     string(r.Status),
		BadgeClass: BadgeClass(r.Status),
		Known:      r.Status.Known(),
		Notes:      notes,
		URL:        r.URL,
	}
}

// BadgeClass returns the CSS classes for a status pill. Unknown statuses get
// the unstyled base class.
func BadgeClass(s catalog.Status) string {
	if s.Known() {
		return "status-pill status-" + string(s)
	}
	return "status-pill"
}

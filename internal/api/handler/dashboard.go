// Package handler provides the HTTP handlers of the dashboard server.
package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/homelabdash/homelabdash/internal/api/response"
	"github.com/homelabdash/homelabdash/internal/catalog"
	"github.com/homelabdash/homelabdash/internal/dashboard"
	"github.com/homelabdash/homelabdash/internal/source"
	"github.com/homelabdash/homelabdash/internal/web"
)

// StateFunc reports the current load state.
type StateFunc func() source.LoadState

// Query parameters shared by the page and the JSON API.
const (
	FilterParam = "status"
	SearchParam = "q"
)

// DashboardHandler renders the HTML dashboard.
type DashboardHandler struct {
	state StateFunc
	now   func() time.Time
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(state StateFunc) *DashboardHandler {
	return &DashboardHandler{state: state, now: time.Now}
}

type filterLink struct {
	Label  string
	Href   string
	Active bool
}

type indexView struct {
	Title        string
	Subtitle     string
	SearchHint   string
	EmptyMessage string
	Year         int
	Refresh      bool
	FilterValue  string
	Filters      []filterLink
	Page         dashboard.Page
}

// Index handles GET /.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	c := controllerFor(h.state(), r)
	page := c.Page()

	filters := make([]filterLink, 0, len(catalog.Filters))
	for _, f := range catalog.Filters {
		filters = append(filters, filterLink{
			Label:  f.Label(),
			Href:   pageHref(f, c.Search()),
			Active: f == c.Filter(),
		})
	}

	view := indexView{
		Title:        dashboard.Title,
		Subtitle:     dashboard.Subtitle,
		SearchHint:   dashboard.SearchHint,
		EmptyMessage: dashboard.EmptyMessage,
		Year:         h.now().Year(),
		Refresh:      page.Phase == source.PhaseLoading,
		FilterValue:  string(c.Filter()),
		Filters:      filters,
		Page:         page,
	}

	response.HTML(w, r, http.StatusOK, web.Templates, "index.html", view)
}

// controllerFor builds a per-request controller from the load state and the
// query string.
func controllerFor(state source.LoadState, r *http.Request) *dashboard.Controller {
	q := r.URL.Query()

	c := dashboard.NewController()
	c.SetLoadState(state)
	c.SetFilter(catalog.ParseFilter(q.Get(FilterParam)))
	c.SetSearch(q.Get(SearchParam))
	return c
}

// pageHref links to the page with the given filter, keeping the search.
func pageHref(f catalog.Filter, search string) string {
	q := url.Values{}
	if f != catalog.FilterAll {
		q.Set(FilterParam, string(f))
	}
	if search != "" {
		q.Set(SearchParam, search)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}

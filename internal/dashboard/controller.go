// Package dashboard owns the dashboard state (load state, filter, search)
// and derives the page to display from it.
package dashboard

import (
	"github.com/homelabdash/homelabdash/internal/catalog"
	"github.com/homelabdash/homelabdash/internal/source"
)

// Controller holds the state of one dashboard session. Each field changes
// only through its setter; Page is a pure read over the current values.
// A Controller is not safe for concurrent use.
type Controller struct {
	load   source.LoadState
	filter catalog.Filter
	search string
}

// NewController returns a controller in the Loading state with the default
// filter and an empty search.
func NewController() *Controller {
	return &Controller{
		load:   source.Loading(),
		filter: catalog.FilterAll,
	}
}

// SetLoadState records the outcome of the data source.
func (c *Controller) SetLoadState(s source.LoadState) {
	c.load = s
}

// SetFilter changes the status filter.
func (c *Controller) SetFilter(f catalog.Filter) {
	c.filter = f
}

// SetSearch changes the search text.
func (c *Controller) SetSearch(s string) {
	c.search = s
}

// LoadState returns the current load state.
func (c *Controller) LoadState() source.LoadState {
	return c.load
}

// Filter returns the current status filter.
func (c *Controller) Filter() catalog.Filter {
	return c.filter
}

// Search returns the current search text.
func (c *Controller) Search() string {
	return c.search
}

// View runs the reducer over the loaded records.
func (c *Controller) View() catalog.View {
	return catalog.Reduce(c.load.Records(), c.filter, c.search)
}

// Page derives the presentation for the current state.
func (c *Controller) Page() Page {
	return BuildPage(c.load, c.filter, c.search)
}

package models

import (
	"github.com/homelabdash/homelabdash/internal/catalog"
	"github.com/homelabdash/homelabdash/internal/source"
)

// ServicesResponse is the JSON rendition of the dashboard. Stats always cover
// the whole collection; Services holds the filtered records in order.
type ServicesResponse struct {
	State    source.Phase     `json:"state"`
	Message  string           `json:"message,omitempty"`
	Filter   catalog.Filter   `json:"filter"`
	Search   string           `json:"search"`
	Stats    catalog.Counts   `json:"stats"`
	Services []catalog.Record `json:"services"`
}

// NewServicesResponse reduces the load state with the given filter and search.
func NewServicesResponse(load source.LoadState, filter catalog.Filter, search string) ServicesResponse {
	view := catalog.Reduce(load.Records(), filter, search)
	return ServicesResponse{
		State:    load.Phase,
		Message:  load.Message,
		Filter:   filter,
		Search:   search,
		Stats:    view.Counts,
		Services: view.Records,
	}
}

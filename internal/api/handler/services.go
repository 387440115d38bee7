package handler

import (
	"net/http"

	"github.com/homelabdash/homelabdash/internal/api/models"
	"github.com/homelabdash/homelabdash/internal/api/response"
)

// ServicesHandler serves the dashboard as JSON.
type ServicesHandler struct {
	state StateFunc
}

// NewServicesHandler creates a ServicesHandler.
func NewServicesHandler(state StateFunc) *ServicesHandler {
	return &ServicesHandler{state: state}
}

// ListServices handles GET /v1/services. It answers 200 in every load phase;
// the state field says whether the records are there yet.
func (h *ServicesHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	c := controllerFor(h.state(), r)
	response.JSON(w, r, http.StatusOK, models.NewServicesResponse(c.LoadState(), c.Filter(), c.Search()))
}

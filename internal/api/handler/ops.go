package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/homelabdash/homelabdash/internal/api/models"
	"github.com/homelabdash/homelabdash/internal/api/response"
	"github.com/homelabdash/homelabdash/internal/source"
	"github.com/homelabdash/homelabdash/internal/source/resilience"
)

// Check is a named dependency probe, such as a database ping.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// OpsConfig holds what the ops endpoints report on.
type OpsConfig struct {
	Version   string
	BuildTime string
	State     StateFunc
	Registry  *resilience.Registry
	Checks    []Check
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready. The server is ready once the
// load has settled, whether it succeeded or not.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	state := h.cfg.State()
	if !state.Terminal() {
		response.ServiceUnavailable(w, r, "services are still loading", 1)
		return
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"state": state.Phase,
		},
	}
	if state.Phase == source.PhaseFailed {
		health.Status = models.HealthStatusDegraded
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - load state, dependency checks and
// upstream health.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{loadSubsystem(h.cfg.State())},
		Providers:  []models.ProviderStatus{},
	}

	for _, check := range h.cfg.Checks {
		sub := models.SubsystemStatus{Name: check.Name, Status: models.HealthStatusOK}
		if err := check.Run(r.Context()); err != nil {
			detail := err.Error()
			sub.Status = models.HealthStatusFail
			sub.Detail = &detail
		}
		status.Subsystems = append(status.Subsystems, sub)
	}

	if h.cfg.Registry != nil {
		for _, ph := range h.cfg.Registry.GetAllHealth() {
			status.Providers = append(status.Providers, providerStatus(ph))
		}
	}

	for _, sub := range status.Subsystems {
		status.Status = worst(status.Status, sub.Status)
	}
	for _, p := range status.Providers {
		status.Status = worst(status.Status, p.Status)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func loadSubsystem(state source.LoadState) models.SubsystemStatus {
	sub := models.SubsystemStatus{Name: "services"}
	switch state.Phase {
	case source.PhaseLoaded:
		sub.Status = models.HealthStatusOK
	case source.PhaseFailed:
		sub.Status = models.HealthStatusFail
		detail := state.Message
		sub.Detail = &detail
	default:
		sub.Status = models.HealthStatusDegraded
		detail := "loading"
		sub.Detail = &detail
	}
	return sub
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            ph.Name,
		Status:              models.HealthStatusOK,
		CircuitState:        ph.CircuitState.String(),
		ConsecutiveFailures: int(ph.Counts.ConsecutiveFailures),
	}

	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}

	switch {
	case ph.IsUnhealthy():
		ps.Status = models.HealthStatusFail
	case ph.IsDegraded():
		ps.Status = models.HealthStatusDegraded
	case ph.LastFailureAt != nil && (ph.LastSuccessAt == nil || ph.LastFailureAt.After(*ph.LastSuccessAt)):
		// Breaker still closed but the most recent call failed.
		ps.Status = models.HealthStatusDegraded
	}
	return ps
}

var severity = map[models.HealthStatus]int{
	models.HealthStatusOK:       0,
	models.HealthStatusDegraded: 1,
	models.HealthStatusFail:     2,
}

func worst(a, b models.HealthStatus) models.HealthStatus {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

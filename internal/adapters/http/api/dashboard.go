package api

import (
	"net/http"

	"github.com/okian/healthdash/internal/domain/health"
	"github.com/okian/healthdash/internal/domain/model"
)

// DashboardHandler serves the presenter output as JSON.
type DashboardHandler struct {
	deps Dependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps Dependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

type dashboardResponse struct {
	Projects []model.Project `json:"projects"`
	health.View
}

// HandleDashboard handles GET /api/dashboard. The view is derived from the
// same list that is returned alongside it.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	projects := h.deps.Projects(r.Context())
	writeJSON(w, http.StatusOK, dashboardResponse{
		Projects: projects,
		View:     health.Present(projects),
	})
}

// HandleProjects handles GET /api/projects and returns the list as fetched.
func (h *DashboardHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Projects(r.Context()))
}

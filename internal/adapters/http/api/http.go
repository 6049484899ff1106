// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/healthdash/internal/domain/health"
	"github.com/okian/healthdash/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Projects returns the current list in fetch order.
	Projects(ctx context.Context) []model.Project
	// View returns the presenter output for the current list.
	View(ctx context.Context) health.View
}

// Server wires the operational HTTP routes.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *DashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		dashboardHandler: NewDashboardHandler(deps),
	}
}

// Register attaches all operational routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "api_dashboard"))
		r.Get("/projects", MetricsMiddleware(s.dashboardHandler.HandleProjects, "api_projects"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

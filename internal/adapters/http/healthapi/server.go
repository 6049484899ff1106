// Package healthapi serves project health metrics computed from a catalog.
// It is the backend the dashboard loader reads from.
package healthapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/healthdash/internal/adapters/catalog"
	"github.com/okian/healthdash/internal/adapters/http/api"
	"github.com/okian/healthdash/internal/domain/assessment"
	"github.com/okian/healthdash/internal/domain/model"
	"github.com/okian/healthdash/pkg/logger"
	"github.com/okian/healthdash/pkg/metrics"
)

// WelcomeMessage is the body of GET /.
const WelcomeMessage = "Welcome to our project management system!"

const corsMaxAge = 300

// ProjectHealth is one entry of GET /project-health: the dashboard's
// {id, name, healthMetrics} plus the derived completion rate and risk level.
type ProjectHealth struct {
	model.Project
	CompletionRate float64              `json:"completionRate"`
	RiskLevel      assessment.RiskLevel `json:"riskLevel"`
}

// Server answers project-health reads.
type Server struct {
	catalog  catalog.Catalog
	assessor Assessor
	logger   logger.Logger
	origins  []string
}

// New builds a Server over c.
func New(c catalog.Catalog, opts ...Option) (*Server, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: catalog is required", ErrInvalidConfig)
	}
	s := &Server{
		catalog:  c,
		assessor: assessment.New(),
		origins:  []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s, nil
}

// Handler returns the complete router with request id, panic recovery and
// CORS applied.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	methods := []string{http.MethodGet, http.MethodOptions}
	if _, ok := s.catalog.(catalog.Editor); ok {
		methods = append(methods, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: methods,
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         corsMaxAge,
	}))
	s.Register(ctx, r)
	return r
}

// Register attaches the health API routes to r. The project and task CRUD
// routes are added only when the catalog is a catalog.Editor.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.With(api.Instrument("health_api_root")).Get("/", s.handleRoot)
	r.With(api.Instrument("health_api_healthz")).Get("/healthz", s.handleHealthz)
	r.With(api.Instrument("project_health")).Get("/project-health", s.handleProjectHealth)
	if ed, ok := s.catalog.(catalog.Editor); ok {
		s.registerEditor(r, ed)
	}
}

// Projects lists the catalog and assesses each record. Records that fail
// validation are skipped and logged so one bad row does not hide the rest.
// The served count per risk level is exported as a gauge.
func (s *Server) Projects(ctx context.Context) ([]ProjectHealth, error) {
	records, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	out := make([]ProjectHealth, 0, len(records))
	levels := map[assessment.RiskLevel]int{
		assessment.RiskLow:    0,
		assessment.RiskMedium: 0,
		assessment.RiskHigh:   0,
	}
	for _, rec := range records {
		as, err := s.assessor.Assess(ctx, rec)
		if err != nil {
			s.logger.Warn(ctx, "skipping project record",
				logger.String("id", rec.ID),
				logger.String("name", rec.Name),
				logger.Error(err))
			continue
		}
		levels[as.RiskLevel]++
		out = append(out, ProjectHealth{
			Project:        model.Project{ID: rec.ID, Name: rec.Name, HealthMetrics: as.Metrics},
			CompletionRate: as.CompletionRate,
			RiskLevel:      as.RiskLevel,
		})
	}
	for level, n := range levels {
		metrics.UpdateServedByRiskLevel(string(level), n)
	}
	return out, nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProjectHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := s.Projects(ctx)
	if err != nil {
		s.logger.Error(ctx, "listing project health failed",
			logger.String("request_id", middleware.GetReqID(ctx)),
			logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    "catalog_unavailable",
			Message: ErrCatalog.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Package site renders the dashboard's pages and owns the route table that
// picks between them.
//
// Routes:
//
//	GET /           -> dashboard (exact match only)
//	GET /login      -> login page, also any path below /login/
//	GET /static/*   -> embedded assets
//	anything else   -> not-found page with status 404
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/healthdash/internal/adapters/http/api"
	"github.com/okian/healthdash/internal/domain/health"
	"github.com/okian/healthdash/pkg/logger"
)

// Dependencies is what the pages read from.
type Dependencies interface {
	View(ctx context.Context) health.View
}

// Handler serves the site's pages.
type Handler struct {
	deps   Dependencies
	pages  *renderer
	logger logger.Logger
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithLogger sets the logger used for render failures.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler parses the embedded templates.
func NewHandler(deps Dependencies, opts ...Option) (*Handler, error) {
	pages, err := newRenderer(siteFS)
	if err != nil {
		return nil, err
	}
	h := &Handler{deps: deps, pages: pages}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get()
	}
	return h, nil
}

// Register attaches the page routes and the not-found fallback to r.
func (h *Handler) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.With(api.Instrument("page_dashboard")).Get("/", h.HandleDashboard)
	r.With(api.Instrument("page_login")).Get("/login", h.HandleLogin)
	r.With(api.Instrument("page_login")).Get("/login/*", h.HandleLogin)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(FS())))
	r.NotFound(api.MetricsMiddleware(h.HandleNotFound, "page_not_found"))
}

// HandleDashboard renders the project cards and the overview chart from the
// current list. Before the first successful read the list is empty.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageDashboard, newDashboardData(h.deps.View(r.Context())))
}

// HandleLogin renders the login page.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, pageLogin, pageData{Title: "Login", Page: pageLogin})
}

// HandleNotFound renders the catch-all page.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, pageNotFound, notFoundData{
		pageData: pageData{Title: "Page Not Found", Page: pageNotFound},
		Path:     r.URL.Path,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := h.pages.render(w, status, page, data); err != nil {
		h.logger.Error(r.Context(), "failed to render page",
			logger.String("page", page),
			logger.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

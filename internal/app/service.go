// Package service wires the project store, the data loader and the health
// presenter into the dashboard service used by the HTTP adapters.
package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/okian/healthdash/internal/adapters/loader"
	"github.com/okian/healthdash/internal/adapters/repository"
	"github.com/okian/healthdash/internal/domain/health"
	"github.com/okian/healthdash/internal/domain/model"
	"github.com/okian/healthdash/pkg/logger"
	"github.com/okian/healthdash/pkg/metrics"
)

// DefaultBaseURL is used when no base URL option is given.
const DefaultBaseURL = "http://localhost:5000"

// Service implements the dashboard dependencies of the HTTP layer.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  *repository.MemoryStore
	loader *loader.Loader

	// Configuration
	baseURL    string
	httpClient *http.Client

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBaseURL sets the project-health API base URL handed to the loader.
func WithBaseURL(u string) Option {
	return func(s *Service) {
		if u != "" {
			s.baseURL = u
		}
	}
}

// WithHTTPClient sets the client the loader reads with.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the store and mounts the loader, which issues the one read
// for this mount in the background. Starting a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting dashboard service...", logger.String("baseURL", s.baseURL))

	store := repository.NewMemoryStore(repository.WithReplaceHook(s.observeReplace))
	ld, err := loader.New(loader.Config{BaseURL: s.baseURL}, store,
		loader.WithHTTPClient(s.httpClient),
		loader.WithLogger(s.logger.Named("loader")),
	)
	if err != nil {
		return err
	}
	if err := ld.Start(ctx); err != nil {
		return err
	}

	s.store = store
	s.loader = ld
	s.started = true
	s.logger.Info(ctx, "dashboard service started", logger.String("url", ld.URL()))
	return nil
}

// Stop unmounts the loader, discarding any read still in flight, and closes
// the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping dashboard service...")

	if s.loader != nil {
		s.loader.Stop()
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// Ready is closed once the current mount's read has finished. Before Start it
// is already closed.
func (s *Service) Ready() <-chan struct{} {
	s.mu.RLock()
	ld := s.loader
	s.mu.RUnlock()
	if ld == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return ld.Done()
}

// Projects returns the current list in fetch order. It is empty until the
// first successful read.
func (s *Service) Projects(ctx context.Context) []model.Project {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return []model.Project{}
	}
	return store.List(ctx)
}

// View derives everything the dashboard renders from the current list.
func (s *Service) View(ctx context.Context) health.View {
	return health.Present(s.Projects(ctx))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"baseURL": s.baseURL,
	}

	if s.store != nil {
		snap := s.store.Snapshot(context.Background())
		stats["version"] = snap.Version
		stats["totalProjects"] = len(snap.Projects)

		dist := health.Distribution(snap.Projects)
		byRisk := make(map[string]int, len(dist))
		for color, n := range dist {
			byRisk[string(color)] = n
		}
		stats["projectsByRisk"] = byRisk
	}
	if s.loader != nil {
		stats["loader"] = s.loader.Status()
	}

	return stats
}

func (s *Service) observeReplace(_ uint64, projects []model.Project) {
	dist := health.Distribution(projects)
	for _, color := range []health.RiskColor{health.RiskGreen, health.RiskOrange, health.RiskRed} {
		metrics.UpdateProjectsByRisk(string(color), dist[color])
	}
}

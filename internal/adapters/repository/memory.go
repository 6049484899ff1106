package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/healthdash/internal/domain/model"
	"github.com/okian/healthdash/pkg/metrics"
)

// MemoryStore is the in-process Store. Writers are serialized and readers
// receive copies, so a list handed out can never change under its holder.
type MemoryStore struct {
	mu       sync.RWMutex
	projects []model.Project
	version  uint64
	closed   bool
	hooks    []ReplaceHook
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{projects: []model.Project{}}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateProjectsLoaded(len(s.projects))
	return s
}

// Replace implements Store.
func (s *MemoryStore) Replace(_ context.Context, projects []model.Project) (uint64, error) {
	start := time.Now()
	next := model.CloneProjects(projects)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	s.projects = next
	s.version++
	version := s.version
	hooks := s.hooks
	s.mu.Unlock()

	metrics.UpdateProjectsLoaded(len(next))
	metrics.RecordStoreReplace(float64(time.Since(start).Microseconds()) / 1000)

	for _, h := range hooks {
		h(version, model.CloneProjects(next))
	}
	return version, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneProjects(s.projects)
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot(_ context.Context) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Version: s.version, Projects: model.CloneProjects(s.projects)}
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// Close rejects further replacements. Reads keep working.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

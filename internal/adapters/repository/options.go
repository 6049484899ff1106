package repository

import "github.com/okian/healthdash/internal/domain/model"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// ReplaceHook observes each successful Replace. It runs after the new list is
// visible and receives a private copy.
type ReplaceHook func(version uint64, projects []model.Project)

// WithReplaceHook registers a hook called after every Replace.
func WithReplaceHook(h ReplaceHook) Option {
	return func(s *MemoryStore) {
		if h != nil {
			s.hooks = append(s.hooks, h)
		}
	}
}

// WithInitial seeds the store. The seed does not count as a replacement.
func WithInitial(projects []model.Project) Option {
	return func(s *MemoryStore) {
		s.projects = model.CloneProjects(projects)
	}
}

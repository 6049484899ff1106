// Package repository holds the dashboard's project state: a single-writer
// cell whose only mutation is wholesale replacement of the project list.
package repository

import (
	"context"

	"github.com/okian/healthdash/internal/domain/model"
)

// Snapshot is an immutable view of the store at one version.
type Snapshot struct {
	Version  uint64
	Projects []model.Project
}

// Store provides access to the current project list.
type Store interface {
	// Replace swaps the whole list in one step. It is the only mutation.
	Replace(ctx context.Context, projects []model.Project) (uint64, error)

	// List returns a copy of the current list in fetch order.
	List(ctx context.Context) []model.Project

	// Snapshot returns the current list together with its version.
	Snapshot(ctx context.Context) Snapshot

	// Count returns the number of projects currently held.
	Count(ctx context.Context) int
}

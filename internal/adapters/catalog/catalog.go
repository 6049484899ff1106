// Package catalog is where the project-health API reads project records
// from: an in-memory set seeded from YAML, or a PostgreSQL database.
package catalog

import (
	"context"
	"errors"

	"github.com/okian/healthdash/internal/domain/model"
)

// Backend names, used as metric labels.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Sentinel kinds for catalog errors.
var (
	ErrLoadSeed = errors.New("catalog seed load failed")
	ErrOpen     = errors.New("catalog open failed")
	ErrQuery    = errors.New("catalog query failed")
)

// Catalog lists project records in a stable order.
type Catalog interface {
	List(ctx context.Context) ([]model.ProjectRecord, error)
}

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/healthdash/internal/domain/model"
	"github.com/okian/healthdash/pkg/metrics"
)

const (
	defaultMaxConns = 10
	pingTimeout     = 3 * time.Second
)

// Schema creates the tables the Postgres catalog reads. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS projects (
	id           SERIAL PRIMARY KEY,
	name         VARCHAR(80) NOT NULL,
	description  TEXT,
	start_date   DATE,
	end_date     DATE,
	risk_factors TEXT[] NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS tasks (
	id         SERIAL PRIMARY KEY,
	name       VARCHAR(80) NOT NULL,
	status     VARCHAR(20) NOT NULL,
	project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE
);`

// Task statuses. Only TaskCompleted counts as done.
const (
	TaskCompleted = "completed"
	TaskOpen      = "open"
)

const listQuery = `
SELECT p.id::text,
       p.name,
       COALESCE(p.description, ''),
       COUNT(t.id),
       COUNT(t.id) FILTER (WHERE t.status = $1),
       COALESCE(to_char(p.start_date, 'YYYY-MM-DD'), ''),
       COALESCE(to_char(p.end_date, 'YYYY-MM-DD'), ''),
       p.risk_factors
FROM projects p
LEFT JOIN tasks t ON t.project_id = p.id
GROUP BY p.id
ORDER BY p.id`

const resetSQL = `TRUNCATE tasks, projects RESTART IDENTITY CASCADE`

// PostgresConfig configures the pool.
type PostgresConfig struct {
	DSN      string
	MaxConns int
}

// Postgres reads project records from PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Catalog = (*Postgres)(nil)

// OpenPostgres connects and pings, failing fast if the database is not
// reachable.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("%w: dsn is required", ErrOpen)
	}

	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", ErrOpen, err)
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	pcfg.MaxConns = int32(maxConns) //nolint:gosec // bounded by config validation
	pcfg.MaxConnIdleTime = 5 * time.Minute
	pcfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("%w: open pool: %w", ErrOpen, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrOpen, err)
	}

	return &Postgres{pool: pool}, nil
}

// Migrate applies Schema.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("%w: migrate: %w", ErrQuery, err)
	}
	return nil
}

// List implements Catalog. Records are ordered by id.
func (p *Postgres) List(ctx context.Context) ([]model.ProjectRecord, error) {
	start := time.Now()
	records, err := p.list(ctx)
	if err != nil {
		metrics.RecordCatalogError(BackendPostgres)
		return nil, err
	}
	metrics.RecordCatalogQuery(BackendPostgres, float64(time.Since(start).Microseconds())/1000)
	return records, nil
}

func (p *Postgres) list(ctx context.Context) ([]model.ProjectRecord, error) {
	rows, err := p.pool.Query(ctx, listQuery, TaskCompleted)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	records := []model.ProjectRecord{}
	for rows.Next() {
		var r model.ProjectRecord
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Description,
			&r.TotalTasks, &r.CompletedTasks,
			&r.StartDate, &r.EndDate,
			&r.RiskFactors,
		); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrQuery, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return records, nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

// Reset empties both tables and restarts their ids.
func (p *Postgres) Reset(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, resetSQL); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrQuery, err)
	}
	return nil
}

// Import appends records as projects plus synthetic tasks, CompletedTasks of
// them completed and the rest open, so List reproduces the counts. Record ids
// are not kept; the database assigns its own. Either every record lands or
// none does.
func (p *Postgres) Import(ctx context.Context, records []model.ProjectRecord) error {
	return p.importRecords(ctx, records, false)
}

// Replace is Reset followed by Import in one transaction. A failure leaves
// the previous contents in place.
func (p *Postgres) Replace(ctx context.Context, records []model.ProjectRecord) error {
	return p.importRecords(ctx, records, true)
}

func (p *Postgres) importRecords(ctx context.Context, records []model.ProjectRecord, reset bool) error {
	rows := make([]ProjectRow, len(records))
	for i, rec := range records {
		rows[i] = rowFromRecord(rec)
		if err := ValidateProject(rows[i]); err != nil {
			return fmt.Errorf("record %d (%s): %w", i, rec.Name, err)
		}
		if rec.TotalTasks < 0 || rec.CompletedTasks < 0 {
			return fmt.Errorf("record %d (%s): %w: negative task count", i, rec.Name, ErrInvalid)
		}
	}

	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if reset {
			if _, err := tx.Exec(ctx, resetSQL); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
		}
		var tasks [][]any
		for i, rec := range records {
			id, err := insertProject(ctx, tx, rows[i])
			if err != nil {
				return err
			}
			for n := 0; n < rec.TotalTasks; n++ {
				status := TaskOpen
				if n < rec.CompletedTasks {
					status = TaskCompleted
				}
				tasks = append(tasks, []any{fmt.Sprintf("task-%d", n+1), status, id})
			}
		}
		if len(tasks) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"tasks"},
			[]string{"name", "status", "project_id"},
			pgx.CopyFromRows(tasks),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: import: %w", ErrQuery, err)
	}
	return nil
}

func rowFromRecord(rec model.ProjectRecord) ProjectRow {
	return ProjectRow{
		Name:        rec.Name,
		Description: rec.Description,
		StartDate:   rec.StartDate,
		EndDate:     rec.EndDate,
		RiskFactors: rec.RiskFactors,
	}
}

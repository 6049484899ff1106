package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var _ Editor = (*Postgres)(nil)

const projectColumns = `id, name, COALESCE(description, ''),
       COALESCE(to_char(start_date, 'YYYY-MM-DD'), ''),
       COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''),
       risk_factors`

type rowScanner interface {
	Scan(dest ...any) error
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanProject(s rowScanner) (ProjectRow, error) {
	var r ProjectRow
	err := s.Scan(&r.ID, &r.Name, &r.Description, &r.StartDate, &r.EndDate, &r.RiskFactors)
	return r, err
}

// queryErr maps no-rows to ErrNotFound and everything else to ErrQuery.
func queryErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	return fmt.Errorf("%w: %s: %w", ErrQuery, op, err)
}

func riskFactors(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func insertProject(ctx context.Context, q queryRower, row ProjectRow) (int64, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO projects (name, description, start_date, end_date, risk_factors)
		 VALUES ($1, $2, NULLIF($3, '')::date, NULLIF($4, '')::date, $5)
		 RETURNING id`,
		row.Name, row.Description, row.StartDate, row.EndDate, riskFactors(row.RiskFactors),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert project %q: %w", row.Name, err)
	}
	return id, nil
}

// ListProjects returns every project ordered by id.
func (p *Postgres) ListProjects(ctx context.Context) ([]ProjectRow, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, queryErr("list projects", err)
	}
	defer rows.Close()

	out := []ProjectRow{}
	for rows.Next() {
		r, err := scanProject(rows)
		if err != nil {
			return nil, queryErr("scan project", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr("list projects", err)
	}
	return out, nil
}

// GetProject returns ErrNotFound for an unknown id.
func (p *Postgres) GetProject(ctx context.Context, id int64) (ProjectRow, error) {
	r, err := scanProject(p.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return ProjectRow{}, queryErr(fmt.Sprintf("project %d", id), err)
	}
	return r, nil
}

// CreateProject validates row, ignores row.ID and returns the stored row.
func (p *Postgres) CreateProject(ctx context.Context, row ProjectRow) (ProjectRow, error) {
	if err := ValidateProject(row); err != nil {
		return ProjectRow{}, err
	}
	id, err := insertProject(ctx, p.pool, row)
	if err != nil {
		return ProjectRow{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	row.ID = id
	row.RiskFactors = riskFactors(row.RiskFactors)
	return row, nil
}

// UpdateProject applies patch under a row lock.
func (p *Postgres) UpdateProject(ctx context.Context, id int64, patch ProjectPatch) (ProjectRow, error) {
	var out ProjectRow
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		cur, err := scanProject(tx.QueryRow(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return queryErr(fmt.Sprintf("project %d", id), err)
		}
		next := patch.Apply(cur)
		if err := ValidateProject(next); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE projects
			 SET name = $2, description = $3,
			     start_date = NULLIF($4, '')::date, end_date = NULLIF($5, '')::date,
			     risk_factors = $6
			 WHERE id = $1`,
			id, next.Name, next.Description, next.StartDate, next.EndDate, riskFactors(next.RiskFactors))
		if err != nil {
			return queryErr(fmt.Sprintf("update project %d", id), err)
		}
		out = next
		out.RiskFactors = riskFactors(out.RiskFactors)
		return nil
	})
	return out, err
}

// DeleteProject removes the project and, by cascade, its tasks.
func (p *Postgres) DeleteProject(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return queryErr(fmt.Sprintf("delete project %d", id), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: project %d", ErrNotFound, id)
	}
	return nil
}

func scanTask(s rowScanner) (TaskRow, error) {
	var r TaskRow
	err := s.Scan(&r.ID, &r.Name, &r.Status, &r.ProjectID)
	return r, err
}

// GetTask returns ErrNotFound for an unknown id.
func (p *Postgres) GetTask(ctx context.Context, id int64) (TaskRow, error) {
	r, err := scanTask(p.pool.QueryRow(ctx,
		`SELECT id, name, status, project_id FROM tasks WHERE id = $1`, id))
	if err != nil {
		return TaskRow{}, queryErr(fmt.Sprintf("task %d", id), err)
	}
	return r, nil
}

// CreateTask returns ErrNotFound when row.ProjectID does not exist.
func (p *Postgres) CreateTask(ctx context.Context, row TaskRow) (TaskRow, error) {
	if err := ValidateTask(row); err != nil {
		return TaskRow{}, err
	}
	err := p.pool.QueryRow(ctx,
		`INSERT INTO tasks (name, status, project_id)
		 SELECT $1, $2, id FROM projects WHERE id = $3
		 RETURNING id`,
		row.Name, row.Status, row.ProjectID,
	).Scan(&row.ID)
	if err != nil {
		return TaskRow{}, queryErr(fmt.Sprintf("project %d", row.ProjectID), err)
	}
	return row, nil
}

// UpdateTask applies patch under a row lock. The owning project is fixed.
func (p *Postgres) UpdateTask(ctx context.Context, id int64, patch TaskPatch) (TaskRow, error) {
	var out TaskRow
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		cur, err := scanTask(tx.QueryRow(ctx,
			`SELECT id, name, status, project_id FROM tasks WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return queryErr(fmt.Sprintf("task %d", id), err)
		}
		next := patch.Apply(cur)
		if err := ValidateTask(next); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE tasks SET name = $2, status = $3 WHERE id = $1`,
			id, next.Name, next.Status); err != nil {
			return queryErr(fmt.Sprintf("update task %d", id), err)
		}
		out = next
		return nil
	})
	return out, err
}

// DeleteTask returns ErrNotFound for an unknown id.
func (p *Postgres) DeleteTask(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return queryErr(fmt.Sprintf("delete task %d", id), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	return nil
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Column limits from Schema.
const (
	maxNameLen   = 80
	maxStatusLen = 20
	dateLayout   = "2006-01-02"
)

var (
	// ErrNotFound is returned when a project or task id does not exist.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrInvalid is returned when a row fails validation before any write.
	ErrInvalid = errors.New("catalog entry invalid")
)

// ProjectRow is one stored project, without task counts.
type ProjectRow struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	RiskFactors []string `json:"riskFactors"`
}

// ProjectPatch holds the fields an update sets. Nil fields are left as is.
type ProjectPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	StartDate   *string   `json:"startDate"`
	EndDate     *string   `json:"endDate"`
	RiskFactors *[]string `json:"riskFactors"`
}

// Apply returns row with the patch fields set.
func (p ProjectPatch) Apply(row ProjectRow) ProjectRow {
	if p.Name != nil {
		row.Name = *p.Name
	}
	if p.Description != nil {
		row.Description = *p.Description
	}
	if p.StartDate != nil {
		row.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		row.EndDate = *p.EndDate
	}
	if p.RiskFactors != nil {
		row.RiskFactors = *p.RiskFactors
	}
	return row
}

// TaskRow is one stored task.
type TaskRow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	ProjectID int64  `json:"projectId"`
}

// TaskPatch holds the fields a task update sets.
type TaskPatch struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// Apply returns row with the patch fields set.
func (p TaskPatch) Apply(row TaskRow) TaskRow {
	if p.Name != nil {
		row.Name = *p.Name
	}
	if p.Status != nil {
		row.Status = *p.Status
	}
	return row
}

// Editor is a Catalog whose projects and tasks can be changed one at a time.
type Editor interface {
	Catalog

	ListProjects(ctx context.Context) ([]ProjectRow, error)
	GetProject(ctx context.Context, id int64) (ProjectRow, error)
	CreateProject(ctx context.Context, row ProjectRow) (ProjectRow, error)
	UpdateProject(ctx context.Context, id int64, patch ProjectPatch) (ProjectRow, error)
	DeleteProject(ctx context.Context, id int64) error

	GetTask(ctx context.Context, id int64) (TaskRow, error)
	CreateTask(ctx context.Context, row TaskRow) (TaskRow, error)
	UpdateTask(ctx context.Context, id int64, patch TaskPatch) (TaskRow, error)
	DeleteTask(ctx context.Context, id int64) error
}

// ValidateProject checks row against the column limits. Dates may be empty.
func ValidateProject(row ProjectRow) error {
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(row.Name) > maxNameLen {
		return fmt.Errorf("%w: name longer than %d", ErrInvalid, maxNameLen)
	}
	for field, v := range map[string]string{"startDate": row.StartDate, "endDate": row.EndDate} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			return fmt.Errorf("%w: %s %q is not YYYY-MM-DD", ErrInvalid, field, v)
		}
	}
	return nil
}

// ValidateTask checks row against the column limits.
func ValidateTask(row TaskRow) error {
	switch {
	case strings.TrimSpace(row.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case len(row.Name) > maxNameLen:
		return fmt.Errorf("%w: name longer than %d", ErrInvalid, maxNameLen)
	case strings.TrimSpace(row.Status) == "":
		return fmt.Errorf("%w: status is required", ErrInvalid)
	case len(row.Status) > maxStatusLen:
		return fmt.Errorf("%w: status longer than %d", ErrInvalid, maxStatusLen)
	}
	return nil
}

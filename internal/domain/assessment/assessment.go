// Package assessment turns catalog records into health metrics: progress from
// task counts, a completion rate from elapsed days, and a risk level from the
// number of recorded risk factors.
package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/healthdash/internal/domain/model"
)

// DateLayout is the calendar format used for project start and end dates.
const DateLayout = "2006-01-02"

const (
	percent            = 100
	hoursPerDay        = 24
	mediumRiskMaxCount = 5
)

// RiskLevel is the coarse risk bucket derived from risk factor count.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Assessment is the computed health of one project.
type Assessment struct {
	Progress       float64   // percent of tasks completed
	CompletionRate float64   // completed tasks per elapsed day
	RiskLevel      RiskLevel // bucket for len(RiskFactors)
	Metrics        model.HealthMetrics
}

// Assessor computes assessments. The zero value is not usable; use New.
type Assessor struct {
	now func() time.Time
}

// Option applies a configuration option to the Assessor.
type Option func(*Assessor)

// WithClock overrides the time source used for completion rates.
func WithClock(now func() time.Time) Option {
	return func(a *Assessor) {
		if now != nil {
			a.now = now
		}
	}
}

// New constructs an Assessor.
func New(opts ...Option) *Assessor {
	a := &Assessor{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assess computes the health of rec. Only date parsing can fail.
func (a *Assessor) Assess(_ context.Context, rec model.ProjectRecord) (Assessment, error) {
	if err := Validate(rec); err != nil {
		return Assessment{}, err
	}
	start, err := parseDate(rec.StartDate)
	if err != nil {
		return Assessment{}, fmt.Errorf("%w: start_date %q", ErrInvalidDate, rec.StartDate)
	}

	progress := Progress(rec.CompletedTasks, rec.TotalTasks)
	return Assessment{
		Progress:       progress,
		CompletionRate: CompletionRate(rec.CompletedTasks, start, a.now()),
		RiskLevel:      AssessRisk(len(rec.RiskFactors)),
		Metrics: model.HealthMetrics{
			Progress: progress,
			Risks:    float64(len(rec.RiskFactors)),
		},
	}, nil
}

// Project converts rec into the wire shape served by the health API.
func (a *Assessor) Project(ctx context.Context, rec model.ProjectRecord) (model.Project, error) {
	as, err := a.Assess(ctx, rec)
	if err != nil {
		return model.Project{}, err
	}
	return model.Project{ID: rec.ID, Name: rec.Name, HealthMetrics: as.Metrics}, nil
}

// Progress is completed/total as a percentage; zero tasks means zero progress.
func Progress(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) * percent / float64(total)
}

// CompletionRate is completed tasks per whole day since start. A project that
// starts today or in the future has no rate yet.
func CompletionRate(completed int, start, now time.Time) float64 {
	days := int(truncateDay(now).Sub(truncateDay(start)).Hours() / hoursPerDay)
	if days <= 0 {
		return 0
	}
	return float64(completed) / float64(days)
}

// AssessRisk buckets a risk factor count.
func AssessRisk(factors int) RiskLevel {
	switch {
	case factors > mediumRiskMaxCount:
		return RiskHigh
	case factors > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Validate checks the fields a record needs before it can be assessed.
func Validate(rec model.ProjectRecord) error {
	switch {
	case strings.TrimSpace(rec.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidRecord)
	case rec.TotalTasks < 0 || rec.CompletedTasks < 0:
		return fmt.Errorf("%w: negative task count", ErrInvalidRecord)
	}
	if rec.EndDate != "" {
		if _, err := parseDate(rec.EndDate); err != nil {
			return fmt.Errorf("%w: end_date %q", ErrInvalidDate, rec.EndDate)
		}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

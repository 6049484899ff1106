package verify

import (
	"fmt"
	"time"
)

// Config holds configuration for one verification run.
type Config struct {
	APIURL       string        // Base URL of the project-health API
	DashboardURL string        // Base URL of the dashboard
	Timeout      time.Duration // HTTP request timeout
	Verbose      bool          // Log every compared card
}

// Stats holds the outcome of a run.
type Stats struct {
	SourceProjects    int
	DashboardProjects int
	CardsChecked      int
	PageCards         int
	PageBars          int
	Mismatches        []string
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// OK reports whether the dashboard agreed with the API on everything.
func (s *Stats) OK() bool { return len(s.Mismatches) == 0 }

func (s *Stats) mismatch(format string, args ...any) {
	s.Mismatches = append(s.Mismatches, fmt.Sprintf(format, args...))
}

// Package verify checks a running dashboard against the project-health API
// it reads from: the stored list, the derived view and the rendered page must
// all agree with what the API serves.
package verify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/healthdash/internal/domain/health"
	"github.com/okian/healthdash/pkg/logger"
)

// Run executes the complete verification. A non-nil Stats is returned even
// when the run fails part way.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	lg := logger.Named("verify")
	defer func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
	}()

	lg.Info(ctx, "starting dashboard verification",
		logger.String("apiURL", config.APIURL),
		logger.String("dashboardURL", config.DashboardURL),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.Timeout)

	// Step 1: both services must be up
	for _, base := range []string{config.APIURL, config.DashboardURL} {
		if err := client.checkHealth(ctx, base); err != nil {
			return stats, err
		}
	}

	// Step 2: what the API serves now
	source, err := client.sourceProjects(ctx, config.APIURL)
	if err != nil {
		return stats, err
	}
	stats.SourceProjects = len(source)

	// Step 3: what the dashboard loaded and derived
	state, err := client.dashboardState(ctx, config.DashboardURL)
	if err != nil {
		return stats, err
	}
	stats.DashboardProjects = len(state.Projects)

	// Step 4: what the dashboard renders
	page, err := client.dashboardPage(ctx, config.DashboardURL)
	if err != nil {
		return stats, err
	}

	// Step 5: compare
	want := health.Present(source)
	compareProjects(source, state.Projects, stats)
	compareView(want, state.View, stats)
	comparePage(want, page, stats)

	if config.Verbose {
		for _, c := range want.Cards {
			lg.Info(ctx, "expected card",
				logger.String("id", c.Ring.ID),
				logger.String("progress", c.Ring.Text),
				logger.String("risk", c.Risk.Text),
				logger.String("color", string(c.Risk.Color)))
		}
	}

	if !stats.OK() {
		for _, m := range stats.Mismatches {
			lg.Warn(ctx, "mismatch", logger.String("detail", m))
		}
		return stats, fmt.Errorf("%w: %d mismatches", ErrMismatch, len(stats.Mismatches))
	}
	lg.Info(ctx, "dashboard verified", logger.Int("projects", stats.SourceProjects))
	return stats, nil
}

// WriteSummary prints a human readable report of stats to w.
func WriteSummary(w io.Writer, stats *Stats) {
	var b strings.Builder
	fmt.Fprintf(&b, "Dashboard verification\n")
	fmt.Fprintf(&b, "  API projects:       %d\n", stats.SourceProjects)
	fmt.Fprintf(&b, "  Dashboard projects: %d\n", stats.DashboardProjects)
	fmt.Fprintf(&b, "  Cards checked:      %d\n", stats.CardsChecked)
	fmt.Fprintf(&b, "  Page cards / bars:  %d / %d\n", stats.PageCards, stats.PageBars)
	fmt.Fprintf(&b, "  Duration:           %s\n", stats.Duration.Round(time.Millisecond))
	if stats.OK() {
		b.WriteString("  Result:             OK\n")
	} else {
		fmt.Fprintf(&b, "  Result:             %d mismatches\n", len(stats.Mismatches))
		for _, m := range stats.Mismatches {
			fmt.Fprintf(&b, "    - %s\n", m)
		}
	}
	_, _ = io.WriteString(w, b.String())
}

package verify

import (
	"strings"

	"github.com/okian/healthdash/internal/domain/health"
	"github.com/okian/healthdash/internal/domain/model"
)

// compareProjects checks the dashboard holds the API's list in the same order.
func compareProjects(source, shown []model.Project, stats *Stats) {
	if len(source) != len(shown) {
		stats.mismatch("dashboard holds %d projects, API serves %d", len(shown), len(source))
		return
	}
	for i := range source {
		if source[i] != shown[i] {
			stats.mismatch("project %d: dashboard has %+v, API serves %+v", i, shown[i], source[i])
		}
	}
}

// compareView checks the dashboard's derived view against one computed here
// from the API's list.
func compareView(want, got health.View, stats *Stats) {
	if len(want.Cards) != len(got.Cards) {
		stats.mismatch("dashboard view has %d cards, expected %d", len(got.Cards), len(want.Cards))
		return
	}
	for i := range want.Cards {
		stats.CardsChecked++
		if want.Cards[i] != got.Cards[i] {
			stats.mismatch("card %d: got %+v, expected %+v", i, got.Cards[i], want.Cards[i])
		}
	}

	if !equalStrings(want.Chart.Labels, got.Chart.Labels) {
		stats.mismatch("chart labels %v, expected %v", got.Chart.Labels, want.Chart.Labels)
	}
	if len(want.Chart.Datasets) != len(got.Chart.Datasets) {
		stats.mismatch("chart has %d series, expected %d", len(got.Chart.Datasets), len(want.Chart.Datasets))
		return
	}
	for i, s := range want.Chart.Datasets {
		g := got.Chart.Datasets[i]
		if s.Label != g.Label || !equalFloats(s.Data, g.Data) {
			stats.mismatch("series %d: got %s %v, expected %s %v", i, g.Label, g.Data, s.Label, s.Data)
		}
	}
}

// comparePage checks the rendered HTML shows the expected cards and one bar
// per project per series.
func comparePage(want health.View, page renderedPage, stats *Stats) {
	stats.PageCards = len(page.Cards)
	stats.PageBars = page.Bars

	if len(page.Cards) != len(want.Cards) {
		stats.mismatch("page renders %d cards, expected %d", len(page.Cards), len(want.Cards))
	} else {
		for i, c := range want.Cards {
			pc := page.Cards[i]
			switch {
			case pc.ID != c.Ring.ID || pc.Name != c.Ring.Name:
				stats.mismatch("page card %d is %s/%s, expected %s/%s", i, pc.ID, pc.Name, c.Ring.ID, c.Ring.Name)
			case pc.Progress != c.Ring.Text:
				stats.mismatch("page card %d ring reads %q, expected %q", i, pc.Progress, c.Ring.Text)
			case pc.Risk != c.Risk.Text:
				stats.mismatch("page card %d risk reads %q, expected %q", i, pc.Risk, c.Risk.Text)
			case !strings.Contains(pc.Class, "risk-"+string(c.Risk.Color)):
				stats.mismatch("page card %d risk class %q, expected color %s", i, pc.Class, c.Risk.Color)
			}
		}
	}

	bars := 0
	for _, s := range want.Chart.Datasets {
		bars += len(s.Data)
	}
	if page.Bars != bars {
		stats.mismatch("chart draws %d bars, expected %d", page.Bars, bars)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

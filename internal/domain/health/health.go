// Package health derives the dashboard's display values from a project list:
// progress rings, risk labels and the aggregate chart dataset.
//
// Everything here is a pure function of its input. Callers may hand in the
// same slice concurrently; nothing is retained or mutated.
package health

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/healthdash/internal/domain/model"
)

// Risk thresholds. Scores below LowRiskBelow are low; scores up to and
// including MediumRiskMax are medium; everything else is high.
const (
	LowRiskBelow  = 3.0
	MediumRiskMax = 5.0
)

// Series labels of the aggregate chart.
const (
	SeriesProgress = "Progress"
	SeriesRisks    = "Risks"
)

// RiskColor is the three-tier classification of a risk score.
type RiskColor string

// Classification results.
const (
	RiskGreen  RiskColor = "green"
	RiskOrange RiskColor = "orange"
	RiskRed    RiskColor = "red"
)

// Level returns a human name for the tier.
func (c RiskColor) Level() string {
	switch c {
	case RiskGreen:
		return "low"
	case RiskOrange:
		return "medium"
	default:
		return "high"
	}
}

// Classify maps a risk score onto its color. It is total: NaN fails both
// comparisons and lands on red, as does anything above MediumRiskMax.
func Classify(r float64) RiskColor {
	switch {
	case r < LowRiskBelow:
		return RiskGreen
	case r >= LowRiskBelow && r <= MediumRiskMax:
		return RiskOrange
	default:
		return RiskRed
	}
}

// RiskLabel is the colored risk indicator shown under each ring.
type RiskLabel struct {
	Score float64   `json:"score"`
	Text  string    `json:"text"`
	Color RiskColor `json:"color"`
}

// NewRiskLabel builds the indicator for r. Text is always "<r>/10".
func NewRiskLabel(r float64) RiskLabel {
	return RiskLabel{Score: r, Text: FormatNumber(r) + "/10", Color: Classify(r)}
}

// ProgressRing holds the parameters of one project's progress indicator.
type ProgressRing struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

// NewProgressRing builds the ring for p. The value is passed through as-is.
func NewProgressRing(p model.Project) ProgressRing {
	v := p.HealthMetrics.Progress
	return ProgressRing{ID: p.ID, Name: p.Name, Value: v, Text: FormatNumber(v) + "%"}
}

// Card pairs a project's ring with its risk label.
type Card struct {
	Ring ProgressRing `json:"ring"`
	Risk RiskLabel    `json:"risk"`
}

// Series is one labeled data series of the chart.
type Series struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// Chart is the grouped bar chart input: one category per project and two
// series positionally aligned with Labels.
type Chart struct {
	Labels   []string `json:"labels"`
	Datasets []Series `json:"datasets"`
}

// Progress returns the "Progress" series, or nil if absent.
func (c Chart) Progress() *Series { return c.series(SeriesProgress) }

// Risks returns the "Risks" series, or nil if absent.
func (c Chart) Risks() *Series { return c.series(SeriesRisks) }

func (c Chart) series(label string) *Series {
	for i := range c.Datasets {
		if c.Datasets[i].Label == label {
			return &c.Datasets[i]
		}
	}
	return nil
}

// NewChart maps projects onto the chart dataset, preserving input order.
func NewChart(projects []model.Project) Chart {
	labels := make([]string, len(projects))
	progress := make([]float64, len(projects))
	risks := make([]float64, len(projects))
	for i, p := range projects {
		labels[i] = p.Name
		progress[i] = p.HealthMetrics.Progress
		risks[i] = p.HealthMetrics.Risks
	}
	return Chart{
		Labels: labels,
		Datasets: []Series{
			{Label: SeriesProgress, Data: progress},
			{Label: SeriesRisks, Data: risks},
		},
	}
}

// View is everything the dashboard page renders.
type View struct {
	Cards []Card `json:"cards"`
	Chart Chart  `json:"chart"`
}

// Empty reports whether there is nothing to render.
func (v View) Empty() bool { return len(v.Cards) == 0 }

// Present derives the full view from the current project list.
func Present(projects []model.Project) View {
	cards := make([]Card, len(projects))
	for i, p := range projects {
		cards[i] = Card{Ring: NewProgressRing(p), Risk: NewRiskLabel(p.HealthMetrics.Risks)}
	}
	return View{Cards: cards, Chart: NewChart(projects)}
}

// Distribution counts projects per risk color.
func Distribution(projects []model.Project) map[RiskColor]int {
	out := map[RiskColor]int{RiskGreen: 0, RiskOrange: 0, RiskRed: 0}
	for _, p := range projects {
		out[Classify(p.HealthMetrics.Risks)]++
	}
	return out
}

// Magnitudes outside [expSmall, expLarge) render in exponent form.
const (
	expLarge = 1e21
	expSmall = 1e-6
)

// FormatNumber renders v the way it was delivered: shortest decimal form,
// no rounding and no trailing zeros ("2", "2.5", "5.001"). Negative zero is
// "0". Very large or very small magnitudes use a short exponent ("1e+21",
// "1.5e-7").
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	if a := math.Abs(v); a >= expLarge || a < expSmall {
		mant, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package site

import (
	"math"

	"github.com/okian/healthdash/internal/domain/health"
)

// Progress ring geometry, in viewBox units of a 100x100 box.
const (
	ringBox    = 100
	ringStroke = 8
	ringRadius = (ringBox - ringStroke) / 2
)

// Chart geometry, in viewBox units.
const (
	chartWidth   = 640
	chartHeight  = 320
	chartPadLeft = 40
	chartPadTop  = 30
	chartPadBot  = 40
	chartPadR    = 10
	chartTicks   = 5
	barFill      = 0.7 // share of a group's width taken by its bars
)

// ringGeometry is what the ring template needs to draw one progress ring.
type ringGeometry struct {
	Box           float64
	Center        float64
	Radius        float64
	Stroke        float64
	Circumference float64
	Offset        float64
}

// newRingGeometry maps a progress value onto the ring's dash offset. Only the
// drawing is clamped to 0..100; the label keeps the delivered value.
func newRingGeometry(v float64) ringGeometry {
	c := 2 * math.Pi * ringRadius
	return ringGeometry{
		Box:           ringBox,
		Center:        ringBox / 2,
		Radius:        ringRadius,
		Stroke:        ringStroke,
		Circumference: c,
		Offset:        c * (1 - clamp(v, 0, 100)/100),
	}
}

type bar struct {
	Series string
	Value  string
	X, Y   float64
	W, H   float64
}

type barGroup struct {
	Label  string
	LabelX float64
	Bars   []bar
}

type tick struct {
	Y    float64
	Text string
}

type legendEntry struct {
	Series string
	X      float64
}

// chartGeometry lays out the grouped bar chart: one group per label, one bar
// per series inside each group, all series sharing a single value axis.
type chartGeometry struct {
	Width, Height float64
	PlotLeft      float64
	PlotRight     float64
	PlotTop       float64
	Baseline      float64
	Max           float64
	Groups        []barGroup
	Ticks         []tick
	Legend        []legendEntry
}

func newChartGeometry(c health.Chart) chartGeometry {
	g := chartGeometry{
		Width:     chartWidth,
		Height:    chartHeight,
		PlotLeft:  chartPadLeft,
		PlotRight: chartWidth - chartPadR,
		PlotTop:   chartPadTop,
		Baseline:  chartHeight - chartPadBot,
		Max:       axisMax(c),
		Groups:    make([]barGroup, len(c.Labels)),
	}
	plotW := g.PlotRight - g.PlotLeft
	plotH := g.Baseline - g.PlotTop

	for i := 0; i <= chartTicks; i++ {
		v := g.Max * float64(i) / chartTicks
		g.Ticks = append(g.Ticks, tick{Y: g.Baseline - plotH*float64(i)/chartTicks, Text: health.FormatNumber(v)})
	}
	for i, s := range c.Datasets {
		g.Legend = append(g.Legend, legendEntry{Series: s.Label, X: g.PlotLeft + float64(i)*100})
	}
	if len(c.Labels) == 0 {
		return g
	}

	groupW := plotW / float64(len(c.Labels))
	series := len(c.Datasets)
	barW := groupW * barFill
	if series > 0 {
		barW /= float64(series)
	}
	for i, label := range c.Labels {
		x0 := g.PlotLeft + groupW*float64(i) + groupW*(1-barFill)/2
		grp := barGroup{Label: label, LabelX: g.PlotLeft + groupW*(float64(i)+0.5)}
		for j, s := range c.Datasets {
			v := 0.0
			if i < len(s.Data) {
				v = s.Data[i]
			}
			h := plotH * clamp(v, 0, g.Max) / g.Max
			grp.Bars = append(grp.Bars, bar{
				Series: s.Label,
				Value:  health.FormatNumber(v),
				X:      x0 + barW*float64(j),
				Y:      g.Baseline - h,
				W:      barW,
				H:      h,
			})
		}
		g.Groups[i] = grp
	}
	return g
}

// axisMax is the top of the value axis: the largest finite datum rounded up
// to a multiple of ten, never below ten.
func axisMax(c health.Chart) float64 {
	m := 10.0
	for _, s := range c.Datasets {
		for _, v := range s.Data {
			if !math.IsNaN(v) && !math.IsInf(v, 0) && v > m {
				m = v
			}
		}
	}
	return math.Ceil(m/10) * 10
}

// clamp bounds v to [lo, hi]. NaN draws as lo.
func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v), v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

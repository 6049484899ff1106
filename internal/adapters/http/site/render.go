package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/healthdash/internal/domain/health"
)

// Page names, also the template file stems.
const (
	pageDashboard = "dashboard"
	pageLogin     = "login"
	pageNotFound  = "notfound"
)

var funcs = template.FuncMap{
	"num":   formatCoord,
	"add":   func(a, b float64) float64 { return a + b },
	"lower": strings.ToLower,
}

// renderer holds one parsed template set per page, each layered over the
// shared layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer(fsys fs.FS) (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{pageDashboard, pageLogin, pageNotFound} {
		t, err := template.New(page).Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTemplate, page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// render executes page into a buffer first so a template failure never
// leaves a half-written response behind.
func (r *renderer) render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("%w: unknown page %q", ErrTemplate, page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRender, page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

type pageData struct {
	Title string
	Page  string
}

type cardData struct {
	ID           string
	Name         string
	ProgressText string
	RiskText     string
	RiskColor    health.RiskColor
	Geometry     ringGeometry
}

type dashboardData struct {
	pageData
	Cards []cardData
	Chart chartGeometry
}

type notFoundData struct {
	pageData
	Path string
}

func newDashboardData(v health.View) dashboardData {
	cards := make([]cardData, len(v.Cards))
	for i, c := range v.Cards {
		cards[i] = cardData{
			ID:           c.Ring.ID,
			Name:         c.Ring.Name,
			ProgressText: c.Ring.Text,
			RiskText:     c.Risk.Text,
			RiskColor:    c.Risk.Color,
			Geometry:     newRingGeometry(c.Ring.Value),
		}
	}
	return dashboardData{
		pageData: pageData{Title: "Project Health Dashboard", Page: pageDashboard},
		Cards:    cards,
		Chart:    newChartGeometry(v.Chart),
	}
}

// formatCoord prints an SVG coordinate with at most two decimals.
func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/healthdash/internal/adapters/loader"
	"github.com/okian/healthdash/internal/adapters/repository"
	"github.com/okian/healthdash/internal/domain/health"
	"github.com/okian/healthdash/internal/domain/model"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

func (c *HTTPClient) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

// checkHealth expects a 2xx from {base}/healthz.
func (c *HTTPClient) checkHealth(ctx context.Context, base string) error {
	url := strings.TrimSuffix(base, "/") + "/healthz"
	resp, err := c.get(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnhealthy, url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %s: %s", ErrUnhealthy, url, resp.Status)
	}
	return nil
}

// sourceProjects reads the API exactly the way the dashboard's loader does.
func (c *HTTPClient) sourceProjects(ctx context.Context, base string) ([]model.Project, error) {
	ld, err := loader.New(loader.Config{BaseURL: base}, repository.NewMemoryStore(), loader.WithHTTPClient(c.client))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	projects, err := ld.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return projects, nil
}

// dashboardState is the body of GET /api/dashboard.
type dashboardState struct {
	Projects []model.Project `json:"projects"`
	health.View
}

func (c *HTTPClient) dashboardState(ctx context.Context, base string) (dashboardState, error) {
	var out dashboardState
	url := strings.TrimSuffix(base, "/") + "/api/dashboard"
	resp, err := c.get(ctx, url)
	if err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return out, fmt.Errorf("%w: %s: %s", ErrFetch, url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	return out, nil
}

// renderedCard is what the dashboard page shows for one project.
type renderedCard struct {
	ID       string
	Name     string
	Progress string
	Risk     string
	Class    string
}

// renderedPage is the part of the dashboard page the check inspects.
type renderedPage struct {
	Cards []renderedCard
	Bars  int
}

func (c *HTTPClient) dashboardPage(ctx context.Context, base string) (renderedPage, error) {
	var out renderedPage
	url := strings.TrimSuffix(base, "/") + "/"
	resp, err := c.get(ctx, url)
	if err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return out, fmt.Errorf("%w: %s: %s", ErrFetch, url, resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	doc.Find(".projects .project").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		class, _ := s.Find("span.risk").Attr("class")
		out.Cards = append(out.Cards, renderedCard{
			ID:       id,
			Name:     strings.TrimSpace(s.Find("h3").Text()),
			Progress: strings.TrimSpace(s.Find(".ring-text").Text()),
			Risk:     strings.TrimSpace(s.Find("span.risk").Text()),
			Class:    class,
		})
	})
	out.Bars = doc.Find("svg.chart rect.bar").Length()
	return out, nil
}

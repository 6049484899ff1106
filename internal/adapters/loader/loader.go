// Package loader performs the dashboard's one-shot read of the project-health
// list and hands the result to the project store.
//
// A Loader is mounted with Start and unmounted with Stop. Each mount issues
// exactly one GET {BaseURL}/project-health. A result that arrives after Stop
// is discarded, never applied.
package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/healthdash/internal/domain/model"
	"github.com/okian/healthdash/pkg/logger"
	"github.com/okian/healthdash/pkg/metrics"
)

// HealthPath is appended to the base URL.
const HealthPath = "/project-health"

// Config is injected at construction; the loader never reads the environment.
type Config struct {
	// BaseURL of the project-health API, e.g. "http://localhost:5000".
	BaseURL string
}

// Replacer is the single mutation entry point of the project state.
type Replacer interface {
	Replace(ctx context.Context, projects []model.Project) (uint64, error)
}

// Status summarizes the loader for diagnostics.
type Status struct {
	Mounted     bool      `json:"mounted"`
	Mounts      int       `json:"mounts"`
	Applied     int       `json:"applied"`
	Failed      int       `json:"failed"`
	Discarded   int       `json:"discarded"`
	LastApplied time.Time `json:"lastApplied,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
}

// Loader fetches the project list once per mount.
type Loader struct {
	endpoint string
	client   *http.Client
	store    Replacer
	logger   logger.Logger
	newID    func() string
	now      func() time.Time

	mu      sync.Mutex
	mounted bool
	cancel  context.CancelFunc
	done    chan struct{}
	status  Status
}

// New builds a Loader for cfg that applies results to store.
func New(cfg Config, store Replacer, opts ...Option) (*Loader, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	endpoint, err := Endpoint(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		endpoint: endpoint,
		client:   http.DefaultClient,
		store:    store,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get()
	}
	return l, nil
}

// Endpoint returns the project-health URL for baseURL.
func Endpoint(baseURL string) (string, error) {
	base := strings.TrimSpace(baseURL)
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: base url %q", ErrInvalidConfig, baseURL)
	}
	return strings.TrimRight(base, "/") + HealthPath, nil
}

// URL returns the endpoint this loader reads.
func (l *Loader) URL() string { return l.endpoint }

// Start mounts the loader and launches its single read. Calling Start on a
// mounted loader does nothing; call Stop first to mount again.
func (l *Loader) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mounted {
		return nil
	}

	mountCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.mounted = true
	l.cancel = cancel
	l.done = done
	l.status.Mounted = true
	l.status.Mounts++

	log := l.logger.With(logger.String("load_id", l.newID()))
	log.Debug(ctx, "mounting project health loader", logger.String("url", l.endpoint))

	go l.run(mountCtx, log, done)
	return nil
}

// Stop unmounts the loader. An in-flight read is abandoned and its result
// discarded. Stop returns once the read goroutine has exited.
func (l *Loader) Stop() {
	l.mu.Lock()
	if !l.mounted {
		l.mu.Unlock()
		return
	}
	cancel, done := l.cancel, l.done
	l.mounted = false
	l.cancel = nil
	l.status.Mounted = false
	cancel()
	l.mu.Unlock()

	<-done
}

// Done is closed when the current (or last) mount's read has finished,
// whatever its outcome. Before the first mount it returns a closed channel.
func (l *Loader) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return l.done
}

// Wait blocks until Done or ctx ends.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns a copy of the loader's counters.
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *Loader) run(ctx context.Context, log logger.Logger, done chan struct{}) {
	defer close(done)
	metrics.AddLoaderInFlight(1)
	defer metrics.AddLoaderInFlight(-1)

	start := time.Now()
	projects, err := l.Fetch(ctx)
	elapsedMs := float64(time.Since(start).Microseconds()) / 1000

	// Apply under the lifecycle lock so Stop either sees the result applied
	// or guarantees it never will be.
	l.mu.Lock()
	defer l.mu.Unlock()

	if ctx.Err() != nil {
		l.status.Discarded++
		metrics.RecordFetch(metrics.FetchDiscarded, elapsedMs)
		log.Debug(ctx, "discarding project health result after unmount")
		return
	}

	if err != nil {
		l.fail(ctx, log, err, elapsedMs)
		return
	}

	if _, err := l.store.Replace(ctx, projects); err != nil {
		l.fail(ctx, log, err, elapsedMs)
		return
	}

	l.status.Applied++
	l.status.LastApplied = l.now()
	l.status.LastError = ""
	metrics.RecordFetch(metrics.FetchSuccess, elapsedMs)
	metrics.MarkFetchApplied(l.status.LastApplied.Unix())
	log.Info(ctx, "fetched project health data",
		logger.Int("count", len(projects)),
		logger.Any("projects", projects),
	)
}

// fail records a failed read. Caller holds l.mu.
func (l *Loader) fail(ctx context.Context, log logger.Logger, err error, elapsedMs float64) {
	l.status.Failed++
	l.status.LastError = err.Error()
	metrics.RecordFetch(metrics.FetchFailure, elapsedMs)
	metrics.RecordFetchFailure(string(StageOf(err)))
	log.Error(ctx, "error fetching project health data",
		logger.String("url", l.endpoint),
		logger.Error(err),
	)
}

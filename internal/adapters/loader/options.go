package loader

import (
	"net/http"
	"time"

	"github.com/okian/healthdash/pkg/logger"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for the read.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithLogger sets the diagnostic sink. Defaults to the global logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WithIDGenerator overrides how load ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(l *Loader) {
		if gen != nil {
			l.newID = gen
		}
	}
}

// WithClock overrides the time source used for status timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

package healthapi

import (
	"context"

	"github.com/okian/healthdash/internal/domain/assessment"
	"github.com/okian/healthdash/internal/domain/model"
	"github.com/okian/healthdash/pkg/logger"
)

// Assessor computes the health of one catalog record.
type Assessor interface {
	Assess(ctx context.Context, rec model.ProjectRecord) (assessment.Assessment, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAssessor replaces the default assessor.
func WithAssessor(a Assessor) Option {
	return func(s *Server) {
		if a != nil {
			s.assessor = a
		}
	}
}

// WithLogger sets the diagnostic sink. Defaults to the global logger.
func WithLogger(lg logger.Logger) Option {
	return func(s *Server) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// WithAllowedOrigins sets the CORS allow list. Defaults to any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = append([]string(nil), origins...)
		}
	}
}

package verify

import "errors"

// Sentinel kinds for verification errors.
var (
	ErrUnhealthy = errors.New("service not healthy")
	ErrMismatch  = errors.New("dashboard disagrees with project-health API")
	ErrFetch     = errors.New("verification fetch failed")
)

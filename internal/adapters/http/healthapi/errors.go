package healthapi

import "errors"

// Sentinel kinds for health API errors.
var (
	ErrInvalidConfig = errors.New("invalid health api config")
	ErrCatalog       = errors.New("catalog unavailable")
)

package assessment

import "errors"

// Sentinel kinds for assessment errors.
var (
	ErrInvalidRecord = errors.New("invalid project record")
	ErrInvalidDate   = errors.New("invalid project date")
)

package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed = errors.New("project store closed")
)

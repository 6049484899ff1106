package site

import "errors"

// Error constants
var (
	ErrTemplate = errors.New("site template failed to load")
	ErrRender   = errors.New("site page render failed")
)

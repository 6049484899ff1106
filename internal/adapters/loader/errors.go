package loader

import (
	"errors"
	"fmt"
)

// Sentinel kinds for loader errors.
var (
	// ErrFetchFailed matches every *FetchError via errors.Is.
	ErrFetchFailed      = errors.New("project health fetch failed")
	ErrInvalidConfig    = errors.New("invalid loader config")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrNotAnArray       = errors.New("response body is not a JSON array")
	ErrTrailingData     = errors.New("unexpected data after JSON array")
)

// Stage names the step of a read that failed. It is informational; all
// stages are handled the same way.
type Stage string

// Fetch stages.
const (
	StageRequest Stage = "request"
	StageStatus  Stage = "status"
	StageDecode  Stage = "decode"
	StageApply   Stage = "apply"
)

// FetchError is the single failure kind of a project-health read.
type FetchError struct {
	Stage      Stage
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 && e.Stage == StageStatus {
		return fmt.Sprintf("fetch %s: %s stage: status %d: %v", e.URL, e.Stage, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s stage: %v", e.URL, e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports ErrFetchFailed as a match.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// StageOf extracts the stage of err. Errors that are not a FetchError come
// from applying the result.
func StageOf(err error) Stage {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return StageApply
}

package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/healthdash/internal/domain/model"
)

// drainLimit bounds how much of an error body is read before closing.
const drainLimit = 4 << 10

// Fetch performs one GET of the project-health list. It does not touch the
// store; Start uses it and applies the result.
func (l *Loader) Fetch(ctx context.Context) ([]model.Project, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, http.NoBody)
	if err != nil {
		return nil, &FetchError{Stage: StageRequest, URL: l.endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &FetchError{Stage: StageRequest, URL: l.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		return nil, &FetchError{
			Stage:      StageStatus,
			URL:        l.endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status),
		}
	}

	projects, err := decodeProjects(resp.Body)
	if err != nil {
		return nil, &FetchError{Stage: StageDecode, URL: l.endpoint, StatusCode: resp.StatusCode, Err: err}
	}
	return projects, nil
}

// decodeProjects reads exactly one JSON array of projects.
func decodeProjects(r io.Reader) ([]model.Project, error) {
	dec := json.NewDecoder(r)
	var projects []model.Project
	if err := dec.Decode(&projects); err != nil {
		return nil, err
	}
	if projects == nil {
		return nil, ErrNotAnArray
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return projects, nil
}

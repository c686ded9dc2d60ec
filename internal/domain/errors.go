package domain

import "errors"

var (
	// ErrDataUnavailable means the backing review file is absent. Startup must
	// halt and surface it; serving a partial table is never acceptable.
	ErrDataUnavailable = errors.New("review data unavailable")

	ErrNotFound = errors.New("not found")
)

package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrOutsideFetchPolicy means the fetch policy does not serve the requested
	// date; no network request was made.
	ErrOutsideFetchPolicy = errors.New("date outside fetch policy")
)

package domain

import (
	"errors"
)

// Domain errors shared across the query pipeline.
var (
	// ErrEmptyQuery indicates a query request with no usable question.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrNoSources indicates that no upstream sources are configured.
	ErrNoSources = errors.New("no answer sources configured")
)

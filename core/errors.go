package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is returned when a query is empty or cannot be parsed.
	ErrInvalidQuery = errors.New("mediamux: invalid or missing media query")

	// ErrEnvironmentUnavailable is returned by an Environment that cannot
	// serve live queries. Handles fall back to static evaluation on it.
	ErrEnvironmentUnavailable = errors.New("mediamux: live environment unavailable")

	// ErrEnvironmentClosed is returned when operations are attempted on a closed environment.
	ErrEnvironmentClosed = errors.New("mediamux: environment is closed")
)

// SyntaxError describes where a media query failed to parse.
type SyntaxError struct {
	Query string
	// Offset is the byte position in Query of the offending token.
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("mediamux: syntax error in %q at offset %d: %s", e.Query, e.Offset, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidQuery) hold for every syntax error.
func (e *SyntaxError) Unwrap() error {
	return ErrInvalidQuery
}

package fetch

import "fmt"

// RetrievalError reports a failed upstream call partway through a walk.
// Records collected before the failure are returned alongside it and kept
// by the aggregator, not discarded.
type RetrievalError struct {
	// Query describes the walk that failed (e.g. `author feed @alice`).
	Query string

	// Cursor is the continuation cursor the failing request carried, empty
	// if the first request failed.
	Cursor string

	// Collected is the number of records retrieved before the failure.
	Collected int

	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s: retrieval failed after %d records (cursor %q): %v", e.Query, e.Collected, e.Cursor, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

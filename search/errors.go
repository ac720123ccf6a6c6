package search

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when a search is aborted through its context.
// The engine checks between priority-queue pops; no partial results are
// returned alongside it.
var ErrCancelled = errors.New("search: cancelled")

// PathNotFoundError reports that no pathway within the hop bound connects
// start to target. It is a legitimate, reportable analysis outcome, not an
// engine failure; callers distinguish it from other errors with errors.As.
type PathNotFoundError struct {
	Start     string
	Target    string
	MaxLength int
}

// Error implements the error interface.
func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("search: no pathway from %s to %s within %d steps",
		e.Start, e.Target, e.MaxLength)
}

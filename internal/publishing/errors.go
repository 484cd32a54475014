// Package publishing implements the content publishing and ordering engine
// shared by every admin-managed collection: slug generation, the lifecycle
// state machine, and the dense display-order index per sibling group.
package publishing

import (
	"errors"
	"fmt"
)

// ErrInvalidTitle is returned when slug normalization produces an empty
// candidate (e.g. the title was only punctuation).
var ErrInvalidTitle = errors.New("title produces an empty slug")

// ErrConcurrencyConflict is returned when a guarded ordering update observes
// a row whose display order changed underneath it. The transaction is rolled
// back; the client should re-fetch and retry.
var ErrConcurrencyConflict = errors.New("sibling group changed concurrently, please retry")

// SlugConflictError reports that a manually chosen slug collides with an
// existing one. Manual slugs are never auto-suffixed.
type SlugConflictError struct {
	Slug string
}

func (e *SlugConflictError) Error() string {
	return fmt.Sprintf("slug %q is already taken", e.Slug)
}

// ValidationError reports an illegal lifecycle transition. No mutation is
// performed when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// OrderMismatchError reports that a full-reorder payload is not a permutation
// of the current group membership (stale client state).
type OrderMismatchError struct {
	Expected int
	Got      int
}

func (e *OrderMismatchError) Error() string {
	return fmt.Sprintf("reorder payload does not match current group membership (have %d items, got %d)", e.Expected, e.Got)
}

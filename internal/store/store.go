// Package store persists per-(user, card) review state and the append-only
// review log. The sqlite implementation is the production backend; the
// in-memory one is a reference used in tests.
package store

import (
	"context"
	"errors"

	"github.com/mnemo/mnemod/internal/domain"
)

// ErrPersistence marks a backend failure. Callers must treat it as retryable
// or surface it to the user; review computation is cheap to redo, so a failed
// write means the whole submission is retried.
var ErrPersistence = errors.New("store: persistence failure")

// RecordStore is the persistence boundary for review state.
//
// Concurrent Put calls for the same (user, card) pair resolve last-writer-
// wins; racing submissions for one card are rare enough that optimistic
// overwrite is acceptable.
type RecordStore interface {
	// Get returns the review state for one (user, card) pair, or (nil, nil)
	// when the card has never been reviewed.
	Get(ctx context.Context, userID, cardID string) (*domain.ReviewState, error)

	// Put inserts or overwrites the state for state's (user, card) pair.
	Put(ctx context.Context, state domain.ReviewState) error

	// ListForUser returns all review states for a user.
	ListForUser(ctx context.Context, userID string) ([]domain.ReviewState, error)

	// LogReview appends one row to the review history.
	LogReview(ctx context.Context, entry domain.ReviewLog) error

	// Reset deletes all review states for a user. The review log is kept.
	Reset(ctx context.Context, userID string) error
}

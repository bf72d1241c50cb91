package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the sqlite driver

	"github.com/mnemo/mnemod/internal/domain"
)

// SQLite is the sqlite-backed RecordStore.
type SQLite struct {
	db *sqlx.DB
}

var _ RecordStore = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at dsn and ensures the schema
// is up to date.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite has a single writer; a pool of one avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get implements RecordStore. A missing row is (nil, nil), not an error.
func (s *SQLite) Get(ctx context.Context, userID, cardID string) (*domain.ReviewState, error) {
	var state domain.ReviewState
	err := s.db.GetContext(ctx, &state, `
		SELECT user_id, card_id, interval_days, ease_factor, due_at,
		       repetitions, lapses, last_reviewed_at
		FROM review_states
		WHERE user_id = ? AND card_id = ?
	`, userID, cardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get review state for %s/%s: %v", ErrPersistence, userID, cardID, err)
	}
	return &state, nil
}

// Put implements RecordStore. The upsert makes concurrent submissions for
// one card resolve last-writer-wins.
func (s *SQLite) Put(ctx context.Context, state domain.ReviewState) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO review_states (
			user_id, card_id, interval_days, ease_factor, due_at,
			repetitions, lapses, last_reviewed_at
		) VALUES (
			:user_id, :card_id, :interval_days, :ease_factor, :due_at,
			:repetitions, :lapses, :last_reviewed_at
		)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			interval_days    = excluded.interval_days,
			ease_factor      = excluded.ease_factor,
			due_at           = excluded.due_at,
			repetitions      = excluded.repetitions,
			lapses           = excluded.lapses,
			last_reviewed_at = excluded.last_reviewed_at
	`, state)
	if err != nil {
		return fmt.Errorf("%w: put review state for %s/%s: %v", ErrPersistence, state.UserID, state.CardID, err)
	}
	return nil
}

// ListForUser implements RecordStore.
func (s *SQLite) ListForUser(ctx context.Context, userID string) ([]domain.ReviewState, error) {
	var states []domain.ReviewState
	err := s.db.SelectContext(ctx, &states, `
		SELECT user_id, card_id, interval_days, ease_factor, due_at,
		       repetitions, lapses, last_reviewed_at
		FROM review_states
		WHERE user_id = ?
		ORDER BY due_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list review states for %s: %v", ErrPersistence, userID, err)
	}
	return states, nil
}

// LogReview implements RecordStore.
func (s *SQLite) LogReview(ctx context.Context, entry domain.ReviewLog) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO review_logs (
			id, user_id, card_id, grade, reviewed_at, interval_days, ease_factor
		) VALUES (
			:id, :user_id, :card_id, :grade, :reviewed_at, :interval_days, :ease_factor
		)
	`, entry)
	if err != nil {
		return fmt.Errorf("%w: log review %s for %s/%s: %v", ErrPersistence, entry.ID, entry.UserID, entry.CardID, err)
	}
	return nil
}

// Reset implements RecordStore.
func (s *SQLite) Reset(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM review_states WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("%w: reset review states for %s: %v", ErrPersistence, userID, err)
	}
	return nil
}

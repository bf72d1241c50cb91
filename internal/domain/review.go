package domain

import (
	"encoding"
	"fmt"
	"time"
)

// Grade is the user's assessment of recall quality for one review.
type Grade int

const (
	Fail Grade = iota // Could not recall the answer.
	Hard              // Recalled with significant difficulty.
	Good              // Recalled with some effort.
	Easy              // Recalled effortlessly.
)

var gradeNames = [...]string{
	Fail: "Fail",
	Hard: "Hard",
	Good: "Good",
	Easy: "Easy",
}

var gradeByName = map[string]Grade{
	"Fail": Fail,
	"Hard": Hard,
	"Good": Good,
	"Easy": Easy,
}

var (
	_ fmt.Stringer             = Grade(0)
	_ encoding.TextMarshaler   = Grade(0)
	_ encoding.TextUnmarshaler = (*Grade)(nil)
)

// String returns the grade name ("Fail", "Hard", "Good", "Easy").
// For invalid values it returns "Grade(n)".
func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// IsValid reports whether g is a defined grade.
func (g Grade) IsValid() bool {
	return g >= Fail && g <= Easy
}

// MarshalText implements encoding.TextMarshaler. Grades serialize as their
// names, which also covers JSON struct fields.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	v, ok := gradeByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidGrade, text)
	}
	*g = v
	return nil
}

// ReviewOutcome is the input event for one review of one card.
type ReviewOutcome struct {
	Grade      Grade     `json:"grade"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// ReviewState is the mutable scheduling state for one (user, card) pair.
// It is the accumulator that successive review outcomes fold into; it is
// created lazily on the first review and deleted only by an explicit user
// data reset.
type ReviewState struct {
	UserID         string    `db:"user_id" json:"user_id"`
	CardID         string    `db:"card_id" json:"card_id"`
	IntervalDays   float64   `db:"interval_days" json:"interval_days"`
	EaseFactor     float64   `db:"ease_factor" json:"ease_factor"`
	DueAt          time.Time `db:"due_at" json:"due_at"`
	Repetitions    int       `db:"repetitions" json:"repetitions"`
	Lapses         int       `db:"lapses" json:"lapses"`
	LastReviewedAt time.Time `db:"last_reviewed_at" json:"last_reviewed_at"`
}

// Due reports whether the card is eligible for review at the given time.
func (s ReviewState) Due(now time.Time) bool {
	return !s.DueAt.After(now)
}

// ReviewLog is one append-only history row recording a review and the
// scheduling state it produced.
type ReviewLog struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	CardID       string    `db:"card_id" json:"card_id"`
	Grade        Grade     `db:"grade" json:"grade"`
	ReviewedAt   time.Time `db:"reviewed_at" json:"reviewed_at"`
	IntervalDays float64   `db:"interval_days" json:"interval_days"`
	EaseFactor   float64   `db:"ease_factor" json:"ease_factor"`
}

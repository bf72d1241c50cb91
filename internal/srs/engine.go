// Package srs implements the spaced-repetition core: an SM-2 style
// scheduling engine that folds review outcomes into per-card state, and a
// selector that picks the cards due for a study session.
//
// Both entry points are pure functions over explicitly passed state, so they
// are safe to call from any number of request handlers at once. Persistence
// is the caller's job.
package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/mnemo/mnemod/internal/domain"
)

// Config holds the tunable constants of the scheduling algorithm.
// All intervals are in days; fractional values are allowed.
type Config struct {
	// InitialIntervalDays seeds the state synthesized for a first review.
	InitialIntervalDays float64 `koanf:"initial_interval_days" validate:"gt=0"`
	// InitialEase seeds the ease factor for a first review.
	InitialEase float64 `koanf:"initial_ease" validate:"gt=0"`

	// MinIntervalDays is the interval a card falls back to after a lapse.
	MinIntervalDays float64 `koanf:"min_interval_days" validate:"gt=0"`
	// MaxIntervalDays caps interval growth.
	MaxIntervalDays float64 `koanf:"max_interval_days" validate:"gtefield=MinIntervalDays"`

	// FirstIntervalDays and SecondIntervalDays are the fixed steps for the
	// first two successful repetitions; after that growth is multiplicative.
	FirstIntervalDays  float64 `koanf:"first_interval_days" validate:"gt=0"`
	SecondIntervalDays float64 `koanf:"second_interval_days" validate:"gt=0"`

	// EasePenalty is subtracted from the ease factor on a failed review.
	EasePenalty float64 `koanf:"ease_penalty" validate:"gte=0"`
	// HardEaseDelta is subtracted on a Hard review; EasyEaseBonus is added
	// on an Easy review. Good leaves the ease factor unchanged.
	HardEaseDelta float64 `koanf:"hard_ease_delta" validate:"gte=0"`
	EasyEaseBonus float64 `koanf:"easy_ease_bonus" validate:"gte=0"`

	// MinEase and MaxEase bound the ease factor. 1.3 is the classic SM-2
	// floor below which intervals stop growing meaningfully.
	MinEase float64 `koanf:"min_ease" validate:"gt=0"`
	MaxEase float64 `koanf:"max_ease" validate:"gtefield=MinEase"`

	// HardMultiplier (< 1) and EasyMultiplier (> 1) scale the multiplicative
	// interval growth by grade. Good is implicitly 1.0.
	HardMultiplier float64 `koanf:"hard_multiplier" validate:"gt=0,lte=1"`
	EasyMultiplier float64 `koanf:"easy_multiplier" validate:"gte=1"`
}

// DefaultConfig returns the default scheduling constants.
func DefaultConfig() Config {
	return Config{
		InitialIntervalDays: 1,
		InitialEase:         2.5,
		MinIntervalDays:     1,
		MaxIntervalDays:     365,
		FirstIntervalDays:   1,
		SecondIntervalDays:  6,
		EasePenalty:         0.2,
		HardEaseDelta:       0.15,
		EasyEaseBonus:       0.15,
		MinEase:             1.3,
		MaxEase:             3.0,
		HardMultiplier:      0.85,
		EasyMultiplier:      1.3,
	}
}

// Schedule applies one review outcome to the card's current state and
// returns the next state. current == nil means this is the first review
// ever; the engine synthesizes the initial state itself.
//
// The returned state always satisfies IntervalDays > 0 and
// MinEase <= EaseFactor <= MaxEase. Schedule never mutates its inputs and
// has no side effects.
func Schedule(current *domain.ReviewState, outcome domain.ReviewOutcome, cfg Config) (domain.ReviewState, error) {
	if !outcome.Grade.IsValid() {
		return domain.ReviewState{}, fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(outcome.Grade))
	}

	reviewedAt := outcome.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = time.Now().UTC()
	}

	var next domain.ReviewState
	if current == nil {
		next = domain.ReviewState{
			IntervalDays: cfg.InitialIntervalDays,
			EaseFactor:   cfg.InitialEase,
		}
	} else {
		next = *current
	}

	switch outcome.Grade {
	case domain.Fail:
		next.Repetitions = 0
		next.Lapses++
		next.IntervalDays = cfg.MinIntervalDays
		next.EaseFactor = clamp(next.EaseFactor-cfg.EasePenalty, cfg.MinEase, cfg.MaxEase)

	default: // Hard, Good, Easy
		next.Repetitions++
		switch outcome.Grade {
		case domain.Hard:
			next.EaseFactor -= cfg.HardEaseDelta
		case domain.Easy:
			next.EaseFactor += cfg.EasyEaseBonus
		}
		next.EaseFactor = clamp(next.EaseFactor, cfg.MinEase, cfg.MaxEase)

		switch {
		case next.Repetitions == 1:
			next.IntervalDays = cfg.FirstIntervalDays
		case next.Repetitions == 2:
			next.IntervalDays = cfg.SecondIntervalDays
		default:
			grown := next.IntervalDays * next.EaseFactor * gradeMultiplier(outcome.Grade, cfg)
			next.IntervalDays = clamp(grown, cfg.MinIntervalDays, cfg.MaxIntervalDays)
		}
	}

	next.LastReviewedAt = reviewedAt
	next.DueAt = reviewedAt.AddDate(0, 0, wholeDays(next.IntervalDays))
	return next, nil
}

// gradeMultiplier scales multiplicative interval growth by grade.
func gradeMultiplier(g domain.Grade, cfg Config) float64 {
	switch g {
	case domain.Hard:
		return cfg.HardMultiplier
	case domain.Easy:
		return cfg.EasyMultiplier
	default:
		return 1.0
	}
}

// wholeDays rounds an interval up to whole days. Due dates keep day
// granularity so a slightly-fractional interval cannot make a card due again
// later the same day.
func wholeDays(interval float64) int {
	d := int(math.Ceil(interval))
	if d < 1 {
		d = 1
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

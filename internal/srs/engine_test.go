package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo/mnemod/internal/domain"
)

var engineNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestScheduleFirstReview(t *testing.T) {
	cfg := DefaultConfig()

	next, err := Schedule(nil, domain.ReviewOutcome{Grade: domain.Good, ReviewedAt: engineNow}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, next.Repetitions)
	assert.Equal(t, cfg.FirstIntervalDays, next.IntervalDays)
	assert.Equal(t, cfg.InitialEase, next.EaseFactor)
	assert.Equal(t, engineNow.AddDate(0, 0, 1), next.DueAt)
	assert.Equal(t, 0, next.Lapses)
}

func TestScheduleMultiplicativeGrowth(t *testing.T) {
	cfg := DefaultConfig()
	current := &domain.ReviewState{
		Repetitions:  3,
		EaseFactor:   2.0,
		IntervalDays: 10,
	}

	next, err := Schedule(current, domain.ReviewOutcome{Grade: domain.Good, ReviewedAt: engineNow}, cfg)
	require.NoError(t, err)

	// 10 days * ease 2.0 * Good multiplier 1.0
	assert.InDelta(t, 20.0, next.IntervalDays, 1e-9)
	assert.Equal(t, 4, next.Repetitions)
	assert.Equal(t, engineNow.AddDate(0, 0, 20), next.DueAt)
}

func TestScheduleFailResets(t *testing.T) {
	cfg := DefaultConfig()
	current := &domain.ReviewState{
		Repetitions:  5,
		EaseFactor:   2.0,
		IntervalDays: 40,
		Lapses:       1,
	}

	next, err := Schedule(current, domain.ReviewOutcome{Grade: domain.Fail, ReviewedAt: engineNow}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, next.Repetitions)
	assert.Equal(t, 2, next.Lapses)
	assert.Equal(t, cfg.MinIntervalDays, next.IntervalDays)
	assert.InDelta(t, 1.8, next.EaseFactor, 1e-9) // 2.0 - penalty 0.2
}

func TestScheduleFailClampsEaseAtFloor(t *testing.T) {
	cfg := DefaultConfig()
	current := &domain.ReviewState{
		Repetitions:  2,
		EaseFactor:   cfg.MinEase,
		IntervalDays: 6,
	}

	next, err := Schedule(current, domain.ReviewOutcome{Grade: domain.Fail, ReviewedAt: engineNow}, cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.MinEase, next.EaseFactor)
}

func TestScheduleGradeEaseAdjustments(t *testing.T) {
	cfg := DefaultConfig()
	base := domain.ReviewState{Repetitions: 3, EaseFactor: 2.0, IntervalDays: 10}

	t.Run("Hard decreases ease and dampens growth", func(t *testing.T) {
		current := base
		next, err := Schedule(&current, domain.ReviewOutcome{Grade: domain.Hard, ReviewedAt: engineNow}, cfg)
		require.NoError(t, err)

		assert.InDelta(t, 1.85, next.EaseFactor, 1e-9)
		// 10 * 1.85 * hard multiplier 0.85
		assert.InDelta(t, 15.725, next.IntervalDays, 1e-9)
	})

	t.Run("Good leaves ease unchanged", func(t *testing.T) {
		current := base
		next, err := Schedule(&current, domain.ReviewOutcome{Grade: domain.Good, ReviewedAt: engineNow}, cfg)
		require.NoError(t, err)

		assert.Equal(t, 2.0, next.EaseFactor)
	})

	t.Run("Easy increases ease and boosts growth", func(t *testing.T) {
		current := base
		next, err := Schedule(&current, domain.ReviewOutcome{Grade: domain.Easy, ReviewedAt: engineNow}, cfg)
		require.NoError(t, err)

		assert.InDelta(t, 2.15, next.EaseFactor, 1e-9)
		// 10 * 2.15 * easy multiplier 1.3
		assert.InDelta(t, 27.95, next.IntervalDays, 1e-9)
	})

	t.Run("Easy clamps ease at ceiling", func(t *testing.T) {
		current := base
		current.EaseFactor = cfg.MaxEase
		next, err := Schedule(&current, domain.ReviewOutcome{Grade: domain.Easy, ReviewedAt: engineNow}, cfg)
		require.NoError(t, err)

		assert.Equal(t, cfg.MaxEase, next.EaseFactor)
	})
}

func TestScheduleSecondRepetitionUsesFixedStep(t *testing.T) {
	cfg := DefaultConfig()
	current := &domain.ReviewState{Repetitions: 1, EaseFactor: 2.5, IntervalDays: 1}

	next, err := Schedule(current, domain.ReviewOutcome{Grade: domain.Good, ReviewedAt: engineNow}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, next.Repetitions)
	assert.Equal(t, cfg.SecondIntervalDays, next.IntervalDays)
}

func TestScheduleInvalidGrade(t *testing.T) {
	_, err := Schedule(nil, domain.ReviewOutcome{Grade: domain.Grade(9), ReviewedAt: engineNow}, DefaultConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidGrade)
}

func TestScheduleInvariants(t *testing.T) {
	cfg := DefaultConfig()
	grades := []domain.Grade{domain.Fail, domain.Hard, domain.Good, domain.Easy}

	// From a spread of starting states, every valid grade must keep the
	// interval positive and the ease factor within bounds.
	starts := []*domain.ReviewState{
		nil,
		{Repetitions: 1, EaseFactor: 1.3, IntervalDays: 1},
		{Repetitions: 4, EaseFactor: 3.0, IntervalDays: 200, Lapses: 7},
		{Repetitions: 10, EaseFactor: 2.2, IntervalDays: 364.5},
	}

	for _, start := range starts {
		for _, grade := range grades {
			next, err := Schedule(start, domain.ReviewOutcome{Grade: grade, ReviewedAt: engineNow}, cfg)
			require.NoError(t, err)

			assert.Greater(t, next.IntervalDays, 0.0, "grade %s", grade)
			assert.GreaterOrEqual(t, next.EaseFactor, cfg.MinEase, "grade %s", grade)
			assert.LessOrEqual(t, next.EaseFactor, cfg.MaxEase, "grade %s", grade)
			assert.LessOrEqual(t, next.IntervalDays, cfg.MaxIntervalDays, "grade %s", grade)
			assert.True(t, next.DueAt.After(engineNow), "grade %s", grade)
		}
	}
}

func TestScheduleRepeatedGoodIsMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	var state *domain.ReviewState
	when := engineNow
	prevInterval := 0.0

	for i := 0; i < 12; i++ {
		next, err := Schedule(state, domain.ReviewOutcome{Grade: domain.Good, ReviewedAt: when}, cfg)
		require.NoError(t, err)

		if next.Repetitions > 2 {
			assert.GreaterOrEqual(t, next.IntervalDays, prevInterval, "repetition %d", next.Repetitions)
		}
		prevInterval = next.IntervalDays
		when = next.DueAt
		state = &next
	}

	assert.Equal(t, 12, state.Repetitions)
}

func TestScheduleFractionalIntervalRoundsUpForDueDate(t *testing.T) {
	cfg := DefaultConfig()
	current := &domain.ReviewState{Repetitions: 3, EaseFactor: 1.3, IntervalDays: 1.0}

	next, err := Schedule(current, domain.ReviewOutcome{Grade: domain.Good, ReviewedAt: engineNow}, cfg)
	require.NoError(t, err)

	// The stored interval stays fractional; the due date rounds up to whole
	// days so the card cannot come due again later the same day.
	assert.InDelta(t, 1.3, next.IntervalDays, 1e-9)
	assert.Equal(t, engineNow.AddDate(0, 0, 2), next.DueAt)
}

func TestScheduleDoesNotMutateInput(t *testing.T) {
	current := &domain.ReviewState{Repetitions: 3, EaseFactor: 2.0, IntervalDays: 10}
	before := *current

	_, err := Schedule(current, domain.ReviewOutcome{Grade: domain.Easy, ReviewedAt: engineNow}, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, before, *current)
}

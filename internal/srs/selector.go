package srs

import (
	"sort"
	"time"

	"github.com/mnemo/mnemod/internal/domain"
)

// DefaultSessionLimit is the number of cards a study session gets when the
// caller does not say otherwise.
const DefaultSessionLimit = 20

// SelectOptions controls due-card selection.
type SelectOptions struct {
	// Limit caps the number of returned cards. Zero or negative means
	// DefaultSessionLimit.
	Limit int
	// Fill pads the result with the soonest not-yet-due cards when fewer
	// than Limit are due. Off by default.
	Fill bool
}

// SelectDue returns the IDs of the cards that should be studied now,
// most urgent first.
//
// Due cards (DueAt <= now) are ordered by ascending due date, with more
// lapses breaking ties so struggling cards surface first among equally-due
// ones. The result is recomputed fresh on every call; SelectDue never
// mutates the input slice.
func SelectDue(states []domain.ReviewState, now time.Time, opts SelectOptions) []string {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSessionLimit
	}

	var due, upcoming []domain.ReviewState
	for _, s := range states {
		if s.Due(now) {
			due = append(due, s)
		} else if opts.Fill {
			upcoming = append(upcoming, s)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].Lapses > due[j].Lapses
	})

	if len(due) > limit {
		due = due[:limit]
	}

	ids := make([]string, 0, len(due))
	for _, s := range due {
		ids = append(ids, s.CardID)
	}

	if opts.Fill && len(ids) < limit {
		sort.SliceStable(upcoming, func(i, j int) bool {
			return upcoming[i].DueAt.Before(upcoming[j].DueAt)
		})
		for _, s := range upcoming {
			if len(ids) == limit {
				break
			}
			ids = append(ids, s.CardID)
		}
	}

	return ids
}

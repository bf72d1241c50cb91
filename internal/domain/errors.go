package domain

import "errors"

// Sentinel errors shared across packages. Check with errors.Is.
var (
	// ErrInvalidGrade marks a review outcome whose grade is not one of the
	// four defined values. No state is mutated when it is returned.
	ErrInvalidGrade = errors.New("invalid review grade")

	// ErrUnknownCard marks a card ID that is not present in the catalog.
	ErrUnknownCard = errors.New("unknown card")
)

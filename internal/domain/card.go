package domain

import (
	"encoding"
	"fmt"
	"strings"
)

// Flashcard is a single question-answer entry from the content catalog.
// Cards are immutable at runtime: authoring happens in source files and the
// catalog is rebuilt wholesale when sources change. The ID is a content hash,
// so editing a card's text produces a new card.
type Flashcard struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Difficulty Difficulty `json:"difficulty"`
	Tags       []string   `json:"tags,omitempty"`
}

// HasTag reports whether the card carries the given tag (case-insensitive).
func (c Flashcard) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Difficulty is an authoring-time hint about how hard a card is.
// It groups cards for presentation and never changes in response to reviews.
type Difficulty int

const (
	Beginner Difficulty = iota
	Intermediate
	Advanced
)

var difficultyNames = [...]string{
	Beginner:     "Beginner",
	Intermediate: "Intermediate",
	Advanced:     "Advanced",
}

var (
	_ fmt.Stringer             = Difficulty(0)
	_ encoding.TextMarshaler   = Difficulty(0)
	_ encoding.TextUnmarshaler = (*Difficulty)(nil)
)

func (d Difficulty) String() string {
	if d.IsValid() {
		return difficultyNames[d]
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// IsValid reports whether d is one of the defined difficulty levels.
func (d Difficulty) IsValid() bool {
	return d >= Beginner && d <= Advanced
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("domain: invalid difficulty %d", int(d))
	}
	return []byte(difficultyNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Matching is
// case-insensitive so content files can write "beginner".
func (d *Difficulty) UnmarshalText(text []byte) error {
	for i, name := range difficultyNames {
		if strings.EqualFold(string(text), name) {
			*d = Difficulty(i)
			return nil
		}
	}
	return fmt.Errorf("domain: unknown difficulty %q", text)
}

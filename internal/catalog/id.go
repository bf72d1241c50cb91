package catalog

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize produces the canonical form of a card's content: each part is
// lowercased, trimmed, and has its line endings normalized before joining.
// Tags and difficulty are deliberately excluded so that re-tagging a card
// does not change its identity (and orphan its review state).
func Normalize(question, answer string) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	// Joined with a newline so adjacent fields cannot run together and
	// collide ("question"+"answer" vs "questionanswer").
	return strings.Join([]string{normalizePart(question), normalizePart(answer)}, "\n")
}

// CardID returns the card's identity: the SHA-256 of its normalized content,
// as a hex string.
func CardID(question, answer string) string {
	sum := sha256.Sum256([]byte(Normalize(question, answer)))
	return fmt.Sprintf("%x", sum)
}

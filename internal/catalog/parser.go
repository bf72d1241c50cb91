package catalog

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mnemo/mnemod/internal/domain"
)

// Markdown deck format: cards are blocks of prefixed lines, separated by
// "---" or by the next "Q:".
//
//	Q: What is a goroutine?
//	A: A lightweight thread managed by the Go runtime.
//	T: go, concurrency
//	D: Intermediate
//
// Q and A may span multiple lines; T and D are single-line directives.
const (
	questionPrefix   = "Q:"
	answerPrefix     = "A:"
	tagsPrefix       = "T:"
	difficultyPrefix = "D:"
)

type parseState int

const (
	seeking parseState = iota
	readingQuestion
	readingAnswer
)

// ParseFile reads a markdown deck file and extracts all cards.
func ParseFile(path string) ([]domain.Flashcard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a markdown deck from r and extracts all cards. Cards without a
// question are dropped; card IDs are assigned from the content hash.
func Parse(r io.Reader) ([]domain.Flashcard, error) {
	scanner := bufio.NewScanner(r)
	var cards []domain.Flashcard
	var current domain.Flashcard
	var block []string
	state := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch state {
		case readingQuestion:
			current.Question = content
		case readingAnswer:
			current.Answer = content
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Question != "" {
			current.ID = CardID(current.Question, current.Answer)
			cards = append(cards, current)
		}
		current = domain.Flashcard{}
		state = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "---":
			finishCard()

		case strings.HasPrefix(line, questionPrefix):
			if state != seeking { // a new question always starts a new card
				finishCard()
			}
			flushBlock()
			state = readingQuestion
			block = append(block, trimPrefix(line, questionPrefix))

		case strings.HasPrefix(line, answerPrefix):
			flushBlock()
			state = readingAnswer
			block = append(block, trimPrefix(line, answerPrefix))

		case strings.HasPrefix(line, tagsPrefix):
			flushBlock()
			state = seeking
			current.Tags = splitTags(trimPrefix(line, tagsPrefix))

		case strings.HasPrefix(line, difficultyPrefix):
			flushBlock()
			state = seeking
			// Unknown difficulty text leaves the default (Beginner).
			_ = current.Difficulty.UnmarshalText([]byte(strings.TrimSpace(trimPrefix(line, difficultyPrefix))))

		default:
			if state != seeking {
				block = append(block, line)
			}
		}
	}

	finishCard() // the last card in the file

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

// trimPrefix strips the field prefix and at most one following space, so
// leading indentation inside a value survives.
func trimPrefix(line, prefix string) string {
	content := line[len(prefix):]
	if strings.HasPrefix(content, " ") {
		content = content[1:]
	}
	return content
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

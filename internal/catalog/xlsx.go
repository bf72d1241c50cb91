package catalog

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mnemo/mnemod/internal/domain"
)

// ParseXLSX reads cards from a spreadsheet deck. The first sheet is used;
// columns are question, answer, tags (comma-separated), difficulty. A header
// row whose first cell is "question" is skipped.
func ParseXLSX(path string) ([]domain.Flashcard, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", path, err)
	}

	var cards []domain.Flashcard
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "question") {
			continue
		}
		if len(row) < 2 {
			continue // not enough cells for a card
		}

		question := strings.TrimSpace(row[0])
		answer := strings.TrimSpace(row[1])
		if question == "" {
			continue
		}

		card := domain.Flashcard{
			ID:       CardID(question, answer),
			Question: question,
			Answer:   answer,
		}
		if len(row) > 2 {
			card.Tags = splitTags(row[2])
		}
		if len(row) > 3 {
			// Unknown difficulty text leaves the default (Beginner).
			_ = card.Difficulty.UnmarshalText([]byte(strings.TrimSpace(row[3])))
		}
		cards = append(cards, card)
	}

	return cards, nil
}

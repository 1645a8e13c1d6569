package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eslsoft/woorden/internal/entity"
)

// LoadXLSX reads a spreadsheet corpus: one word per row with columns
// id, word, chinese, english, part of speech, difficulty, notes. The first
// row is treated as a header. Form tables and example sentences are not
// expressible in the flat sheet; such entries go through the JSON corpus.
func LoadXLSX(path, sheet string) ([]entity.Word, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var words []entity.Word
	seen := make(map[int64]struct{})
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) == 0 || strings.TrimSpace(cell(row, 0)) == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(cell(row, 0)), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("row %d: invalid id %q", i+1, cell(row, 0))
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("row %d: duplicate id %d", i+1, id)
		}
		seen[id] = struct{}{}

		words = append(words, entity.Word{
			ID:   id,
			Text: strings.TrimSpace(cell(row, 1)),
			Translation: entity.Translation{
				Chinese: strings.TrimSpace(cell(row, 2)),
				English: strings.TrimSpace(cell(row, 3)),
			},
			PartOfSpeech: entity.ParsePartOfSpeech(cell(row, 4)),
			Difficulty:   entity.Difficulty(strings.ToUpper(strings.TrimSpace(cell(row, 5)))),
			Notes:        strings.TrimSpace(cell(row, 6)),
		})
	}
	return words, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

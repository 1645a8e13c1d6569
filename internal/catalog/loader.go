// Package catalog loads and validates the static word corpus. The corpus
// is read once at startup and treated as immutable afterwards; user
// progress never touches it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eslsoft/woorden/internal/entity"
)

// wordDoc is the deserialization boundary for one corpus entry. The
// historical corpus stored translations either as a keyed object or as a
// two-element [chinese, english] array; the union is resolved here and
// never carried into business logic.
type wordDoc struct {
	ID           int64                      `json:"id"`
	Text         string                     `json:"word"`
	Translation  json.RawMessage            `json:"translation"`
	PartOfSpeech string                     `json:"partOfSpeech"`
	Forms        *entity.WordForms          `json:"forms,omitempty"`
	Examples     []string                   `json:"examples"`
	ExampleTrans *entity.ExampleTranslation `json:"exampleTranslations,omitempty"`
	Notes        string                     `json:"notes,omitempty"`
	Difficulty   string                     `json:"difficulty"`
}

// Load reads the corpus file and normalizes every entry to the internal
// shape. IDs must be positive and unique; anything stricter is the
// validator's job.
func Load(path string) ([]entity.Word, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var docs []wordDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	words := make([]entity.Word, 0, len(docs))
	seen := make(map[int64]struct{}, len(docs))
	for i, doc := range docs {
		if doc.ID <= 0 {
			return nil, fmt.Errorf("corpus entry %d: %w", i, entity.ErrInvalidWordID)
		}
		if _, dup := seen[doc.ID]; dup {
			return nil, fmt.Errorf("corpus entry %d: duplicate id %d", i, doc.ID)
		}
		seen[doc.ID] = struct{}{}

		translation, err := decodeTranslation(doc.Translation)
		if err != nil {
			return nil, fmt.Errorf("corpus entry %d (%s): %w", i, doc.Text, err)
		}
		words = append(words, entity.Word{
			ID:           doc.ID,
			Text:         doc.Text,
			Translation:  translation,
			PartOfSpeech: entity.ParsePartOfSpeech(doc.PartOfSpeech),
			Forms:        doc.Forms,
			Examples:     doc.Examples,
			ExampleTrans: doc.ExampleTrans,
			Notes:        doc.Notes,
			Difficulty:   entity.Difficulty(doc.Difficulty),
		})
	}
	return words, nil
}

// decodeTranslation accepts the structured object form and the legacy
// [chinese, english] array form.
func decodeTranslation(raw json.RawMessage) (entity.Translation, error) {
	if len(raw) == 0 {
		return entity.Translation{}, fmt.Errorf("missing translation")
	}

	var structured entity.Translation
	if err := json.Unmarshal(raw, &structured); err == nil {
		return structured, nil
	}

	var legacy []string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return entity.Translation{}, fmt.Errorf("unrecognized translation shape: %s", raw)
	}
	if len(legacy) < 2 {
		return entity.Translation{}, fmt.Errorf("legacy translation needs two languages, got %d", len(legacy))
	}
	return entity.Translation{Chinese: legacy[0], English: legacy[1]}, nil
}

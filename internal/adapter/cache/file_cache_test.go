package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/woorden/internal/entity"
)

func newTestCache(t *testing.T) (*FileCache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.json")
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	return NewFileCache(path, logger).(*FileCache), path
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	c, _ := newTestCache(t)
	words, err := c.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(words) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(words))
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	in := []entity.DisplayWord{
		{
			Word:        entity.Word{ID: 7, Text: "huis", Difficulty: entity.DifficultyB1},
			Familiarity: entity.FamiliarityFamiliar,
			Stats:       &entity.LearningStats{ViewCount: 3, TestCount: 2, TestCorrectCount: 2},
		},
		{
			Word:        entity.Word{ID: 8, Text: "fiets", Difficulty: entity.DifficultyA1},
			Familiarity: entity.FamiliarityNew,
		},
	}
	if err := c.Save(in); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	out, err := c.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	if out[0].ID != 7 || out[0].Familiarity != entity.FamiliarityFamiliar {
		t.Errorf("unexpected first entry: %+v", out[0])
	}
	if out[0].Stats == nil || out[0].Stats.ViewCount != 3 {
		t.Errorf("stats not preserved: %+v", out[0].Stats)
	}
	if out[1].Stats != nil {
		t.Errorf("expected nil stats for untouched word, got %+v", out[1].Stats)
	}
}

func TestLoadCorruptFileStartsFresh(t *testing.T) {
	c, path := newTestCache(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	words, err := c.Load()
	if err != nil {
		t.Fatalf("corrupt cache should not error, got %v", err)
	}
	if len(words) != 0 {
		t.Fatalf("expected fresh start, got %d entries", len(words))
	}
}

func TestSaveOverwritesPreviousBlob(t *testing.T) {
	c, _ := newTestCache(t)
	first := []entity.DisplayWord{{Word: entity.Word{ID: 1, Text: "een"}, Familiarity: entity.FamiliarityLearning}}
	if err := c.Save(first); err != nil {
		t.Fatal(err)
	}
	second := []entity.DisplayWord{{Word: entity.Word{ID: 2, Text: "twee"}, Familiarity: entity.FamiliarityNew}}
	if err := c.Save(second); err != nil {
		t.Fatal(err)
	}
	out, err := c.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("expected full supersede, got %+v", out)
	}
}

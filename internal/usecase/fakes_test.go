package usecase

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/woorden/internal/entity"
)

// fakeProgressRepo is an in-memory stand-in for the remote record store.
// Setting unavailable makes every call fail the way a network outage would.
type fakeProgressRepo struct {
	mu          sync.RWMutex
	records     map[string]map[int64]entity.ProgressRecord
	unavailable bool
	upserts     int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[string]map[int64]entity.ProgressRecord)}
}

func (r *fakeProgressRepo) LoadAll(ctx context.Context, userID string) (map[int64]entity.ProgressRecord, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]entity.ProgressRecord, len(r.records[userID]))
	for id, record := range r.records[userID] {
		out[id] = cloneRecord(record)
	}
	return out, nil
}

func (r *fakeProgressRepo) Get(ctx context.Context, userID string, wordID int64) (*entity.ProgressRecord, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[userID][wordID]
	if !ok {
		return nil, nil
	}
	clone := cloneRecord(record)
	return &clone, nil
}

func (r *fakeProgressRepo) Upsert(ctx context.Context, userID string, record entity.ProgressRecord) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records[userID] == nil {
		r.records[userID] = make(map[int64]entity.ProgressRecord)
	}
	r.records[userID][record.WordID] = cloneRecord(record)
	r.upserts++
	return nil
}

func (r *fakeProgressRepo) UpsertAll(ctx context.Context, userID string, records []entity.ProgressRecord) error {
	for _, record := range records {
		if err := r.Upsert(ctx, userID, record); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeProgressRepo) DeleteAll(ctx context.Context, userID string) error {
	if err := r.check(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, userID)
	return nil
}

func (r *fakeProgressRepo) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.unavailable {
		return entity.ErrStoreUnavailable
	}
	return nil
}

func (r *fakeProgressRepo) setUnavailable(down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = down
}

func (r *fakeProgressRepo) seed(userID string, record entity.ProgressRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records[userID] == nil {
		r.records[userID] = make(map[int64]entity.ProgressRecord)
	}
	r.records[userID][record.WordID] = cloneRecord(record)
}

func (r *fakeProgressRepo) get(userID string, wordID int64) (entity.ProgressRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[userID][wordID]
	return record, ok
}

func cloneRecord(src entity.ProgressRecord) entity.ProgressRecord {
	clone := src
	clone.Stats = src.Stats.Clone()
	return clone
}

// fakeCacheStore holds the blob in memory.
type fakeCacheStore struct {
	mu    sync.RWMutex
	words []entity.DisplayWord
	saves int
}

func (c *fakeCacheStore) Load() ([]entity.DisplayWord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]entity.DisplayWord, len(c.words))
	for i, word := range c.words {
		out[i] = word
		out[i].Stats = word.Stats.Clone()
	}
	return out, nil
}

func (c *fakeCacheStore) Save(words []entity.DisplayWord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.words = make([]entity.DisplayWord, len(words))
	for i, word := range words {
		c.words[i] = word
		c.words[i].Stats = word.Stats.Clone()
	}
	c.saves++
	return nil
}

func testCatalog() []entity.Word {
	return []entity.Word{
		{ID: 7, Text: "huis", Translation: entity.Translation{English: "house", Chinese: "房子"}, PartOfSpeech: entity.PartOfSpeechNoun, Difficulty: entity.DifficultyB1},
		{ID: 8, Text: "fiets", Translation: entity.Translation{English: "bicycle", Chinese: "自行车"}, PartOfSpeech: entity.PartOfSpeechNoun, Difficulty: entity.DifficultyA1},
		{ID: 9, Text: "lopen", Translation: entity.Translation{English: "to walk", Chinese: "走"}, PartOfSpeech: entity.PartOfSpeechVerb, Difficulty: entity.DifficultyA2},
	}
}

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

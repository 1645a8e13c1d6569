package repository

import (
	"context"

	"github.com/eslsoft/woorden/internal/entity"
)

// ProgressRepository abstracts the remote record store holding per-(user,
// word) progress rows. Implementations must perform read-modify-write
// upserts: an update re-reads the current row so concurrent updates to the
// same word never clobber counters they do not touch.
//
// Connectivity or authentication failures are reported as errors wrapping
// entity.ErrStoreUnavailable; callers fall back to the local cache.
type ProgressRepository interface {
	// LoadAll returns every progress record of the user, keyed by word ID.
	LoadAll(ctx context.Context, userID string) (map[int64]entity.ProgressRecord, error)
	// Get returns the record for one word, or nil when none exists.
	Get(ctx context.Context, userID string, wordID int64) (*entity.ProgressRecord, error)
	// Upsert inserts or updates one record, last writer wins per row.
	Upsert(ctx context.Context, userID string, record entity.ProgressRecord) error
	// UpsertAll persists every given record in one pass.
	UpsertAll(ctx context.Context, userID string, records []entity.ProgressRecord) error
	// DeleteAll removes every record of the user (full reset).
	DeleteAll(ctx context.Context, userID string) error
}

// CacheStore is the local single-blob cache holding the full display list.
// Reads and writes are synchronous; every save re-serializes the whole
// list. A missing or corrupt blob loads as an empty list, never an error
// that escalates past the store.
type CacheStore interface {
	Load() ([]entity.DisplayWord, error)
	Save(words []entity.DisplayWord) error
}

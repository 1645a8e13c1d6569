package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/woorden/internal/entity"
	"github.com/eslsoft/woorden/internal/familiarity"
	"github.com/eslsoft/woorden/internal/repository"
)

// ProgressUsecase records learning events against the progress stores.
// Every operation follows the same shape: re-fetch the current stats,
// apply the increment, re-derive the familiarity level, persist remote
// best-effort and local always, and hand the updated record back for the
// UI. An empty userID means guest mode: the remote store is skipped
// entirely.
type ProgressUsecase interface {
	RecordView(ctx context.Context, userID string, wordID int64) (*entity.ProgressRecord, error)
	RecordMasteryToggle(ctx context.Context, userID string, wordID int64, requested entity.FamiliarityLevel) (*entity.ProgressRecord, error)
	RecordTestResult(ctx context.Context, userID string, wordID int64, correct bool) (*entity.ProgressRecord, error)
	SaveAll(ctx context.Context, userID string, words []entity.DisplayWord) error
	Reset(ctx context.Context, userID string) ([]entity.DisplayWord, error)
	// FlushPending retries records whose remote write failed earlier.
	FlushPending(ctx context.Context) error
}

// NewProgressUsecase wires the stores with default behaviour.
func NewProgressUsecase(
	remote repository.ProgressRepository,
	cache repository.CacheStore,
	catalog []entity.Word,
	logger logrus.FieldLogger,
) ProgressUsecase {
	known := make(map[int64]struct{}, len(catalog))
	for _, word := range catalog {
		known[word.ID] = struct{}{}
	}
	return &progressUsecase{
		remote:  remote,
		cache:   cache,
		catalog: catalog,
		known:   known,
		logger:  logger,
		clock:   time.Now,
		pending: make(map[string]map[int64]entity.ProgressRecord),
	}
}

type progressUsecase struct {
	remote  repository.ProgressRepository
	cache   repository.CacheStore
	catalog []entity.Word
	known   map[int64]struct{}
	logger  logrus.FieldLogger
	clock   func() time.Time

	mu      sync.Mutex
	pending map[string]map[int64]entity.ProgressRecord
}

func (u *progressUsecase) checkWord(wordID int64) error {
	if wordID <= 0 {
		return entity.ErrInvalidWordID
	}
	if _, ok := u.known[wordID]; !ok {
		return entity.ErrWordNotFound
	}
	return nil
}

func (u *progressUsecase) RecordView(ctx context.Context, userID string, wordID int64) (*entity.ProgressRecord, error) {
	if err := u.checkWord(wordID); err != nil {
		return nil, err
	}
	current, err := u.currentRecord(ctx, userID, wordID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	stats := current.Stats.WithView(now)
	// Viewing a card never changes the label by itself; the stored level
	// (or "new" for a first interaction) is carried forward.
	record := entity.ProgressRecord{
		WordID:      wordID,
		Familiarity: current.Familiarity,
		Stats:       stats,
		UpdatedAt:   now,
	}
	return u.persist(ctx, userID, record)
}

func (u *progressUsecase) RecordMasteryToggle(ctx context.Context, userID string, wordID int64, requested entity.FamiliarityLevel) (*entity.ProgressRecord, error) {
	if err := u.checkWord(wordID); err != nil {
		return nil, err
	}
	if !entity.ValidFamiliarity(string(requested)) {
		return nil, entity.ErrInvalidFamiliarity
	}
	current, err := u.currentRecord(ctx, userID, wordID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	stats := current.Stats.WithMasteryMark(requested == entity.FamiliarityMastered)
	record := entity.ProgressRecord{
		WordID:      wordID,
		Familiarity: familiarity.Level(stats, requested, now),
		Stats:       stats,
		UpdatedAt:   now,
	}
	return u.persist(ctx, userID, record)
}

func (u *progressUsecase) RecordTestResult(ctx context.Context, userID string, wordID int64, correct bool) (*entity.ProgressRecord, error) {
	if err := u.checkWord(wordID); err != nil {
		return nil, err
	}
	current, err := u.currentRecord(ctx, userID, wordID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	stats := current.Stats.WithTestResult(correct, now)
	// Test outcomes are never overridden by earlier mastery claims, so a
	// run of wrong answers can pull an unearned label back down.
	record := entity.ProgressRecord{
		WordID:      wordID,
		Familiarity: familiarity.Level(stats, "", now),
		Stats:       stats,
		UpdatedAt:   now,
	}
	return u.persist(ctx, userID, record)
}

func (u *progressUsecase) SaveAll(ctx context.Context, userID string, words []entity.DisplayWord) error {
	if err := u.cache.Save(words); err != nil {
		return err
	}
	if userID == "" {
		return nil
	}
	now := u.clock()
	records := make([]entity.ProgressRecord, 0, len(words))
	for _, word := range words {
		records = append(records, entity.ProgressRecord{
			WordID:      word.ID,
			Familiarity: word.Familiarity,
			Stats:       word.Stats,
			UpdatedAt:   now,
		})
	}
	return u.remote.UpsertAll(ctx, userID, records)
}

// Reset clears all progress of the user and rebuilds the default display
// list: every word back to "new" with no stats.
func (u *progressUsecase) Reset(ctx context.Context, userID string) ([]entity.DisplayWord, error) {
	defaults := defaultDisplayWords(u.catalog)
	if err := u.cache.Save(defaults); err != nil {
		return nil, err
	}
	if userID == "" {
		return defaults, nil
	}
	if err := u.remote.DeleteAll(ctx, userID); err != nil {
		return nil, err
	}
	return defaults, nil
}

// currentRecord re-fetches the latest stored state for the word so the
// subsequent write carries every counter, not just the one being touched.
// Remote is authoritative when reachable; otherwise the cached entry is
// used and the failure only logged.
func (u *progressUsecase) currentRecord(ctx context.Context, userID string, wordID int64) (entity.ProgressRecord, error) {
	if userID != "" {
		record, err := u.remote.Get(ctx, userID, wordID)
		if err == nil {
			if record != nil {
				return *record, nil
			}
			return entity.ProgressRecord{WordID: wordID, Familiarity: entity.FamiliarityNew}, nil
		}
		u.logger.WithError(err).WithField("word_id", wordID).
			Warn("remote fetch failed, using cached progress")
	}

	words, err := u.cache.Load()
	if err != nil {
		return entity.ProgressRecord{}, err
	}
	for _, word := range words {
		if word.ID == wordID {
			return entity.ProgressRecord{
				WordID:      wordID,
				Familiarity: word.Familiarity,
				Stats:       word.Stats.Clone(),
			}, nil
		}
	}
	return entity.ProgressRecord{WordID: wordID, Familiarity: entity.FamiliarityNew}, nil
}

// persist writes the record remote best-effort and local always, then
// returns it for the caller's UI update.
func (u *progressUsecase) persist(ctx context.Context, userID string, record entity.ProgressRecord) (*entity.ProgressRecord, error) {
	if userID != "" {
		if err := u.remote.Upsert(ctx, userID, record); err != nil {
			u.logger.WithError(err).WithField("word_id", record.WordID).
				Warn("remote save failed, progress kept locally")
			u.queuePending(userID, record)
		}
	}
	if err := u.updateCachedWord(record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (u *progressUsecase) queuePending(userID string, record entity.ProgressRecord) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pending[userID] == nil {
		u.pending[userID] = make(map[int64]entity.ProgressRecord)
	}
	u.pending[userID][record.WordID] = record
}

// FlushPending replays queued records against the remote store. Records
// that fail again are kept, unless a newer write for the same word was
// queued while the flush ran.
func (u *progressUsecase) FlushPending(ctx context.Context) error {
	u.mu.Lock()
	queued := u.pending
	u.pending = make(map[string]map[int64]entity.ProgressRecord)
	u.mu.Unlock()

	var lastErr error
	for userID, records := range queued {
		for _, record := range records {
			if err := u.remote.Upsert(ctx, userID, record); err != nil {
				lastErr = err
				u.requeue(userID, record)
			}
		}
	}
	return lastErr
}

func (u *progressUsecase) requeue(userID string, record entity.ProgressRecord) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.pending[userID] == nil {
		u.pending[userID] = make(map[int64]entity.ProgressRecord)
	}
	if _, exists := u.pending[userID][record.WordID]; !exists {
		u.pending[userID][record.WordID] = record
	}
}

func (u *progressUsecase) updateCachedWord(record entity.ProgressRecord) error {
	words, err := u.cache.Load()
	if err != nil {
		return err
	}
	if len(words) == 0 {
		words = defaultDisplayWords(u.catalog)
	}
	for i := range words {
		if words[i].ID == record.WordID {
			words[i].Familiarity = record.Familiarity
			words[i].Stats = record.Stats
			break
		}
	}
	return u.cache.Save(words)
}

package usecase

import (
	"context"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/woorden/internal/entity"
	"github.com/eslsoft/woorden/internal/repository"
)

// SyncUsecase reconciles the static catalog with stored progress into the
// display-ready word list. Once a session is authenticated the remote map
// fully supersedes the local cache: words without a remote record fall back
// to defaults, never to stale local values, so a server-side reset cannot
// be resurrected from an old blob.
type SyncUsecase interface {
	// Words returns the authoritative display list for the user. With a
	// userID it loads remote and writes the merge through to the local
	// cache; without one (guest) it serves the cache alone. When remote is
	// unreachable the cached list is returned together with an error
	// wrapping entity.ErrStoreUnavailable so the caller can surface a
	// transient sync status.
	Words(ctx context.Context, userID string) ([]entity.DisplayWord, error)
	// Merge combines the catalog with a progress map, catalog order kept.
	Merge(progress map[int64]entity.ProgressRecord) []entity.DisplayWord
}

// NewSyncUsecase wires the reconciler with its stores.
func NewSyncUsecase(
	remote repository.ProgressRepository,
	cache repository.CacheStore,
	catalog []entity.Word,
	logger logrus.FieldLogger,
) SyncUsecase {
	return &syncUsecase{
		remote:  remote,
		cache:   cache,
		catalog: catalog,
		logger:  logger,
	}
}

type syncUsecase struct {
	remote  repository.ProgressRepository
	cache   repository.CacheStore
	catalog []entity.Word
	logger  logrus.FieldLogger
}

func (u *syncUsecase) Words(ctx context.Context, userID string) ([]entity.DisplayWord, error) {
	if userID == "" {
		return u.localWords()
	}

	progress, err := u.remote.LoadAll(ctx, userID)
	if err != nil {
		u.logger.WithError(err).Warn("remote progress unavailable, serving local cache")
		words, localErr := u.localWords()
		if localErr != nil {
			return nil, localErr
		}
		return words, err
	}

	merged := u.Merge(progress)
	// Write-through so offline reads stay consistent with the merge.
	if err := u.cache.Save(merged); err != nil {
		u.logger.WithError(err).Warn("caching merged progress failed")
	}
	return merged, nil
}

func (u *syncUsecase) Merge(progress map[int64]entity.ProgressRecord) []entity.DisplayWord {
	return lo.Map(u.catalog, func(word entity.Word, _ int) entity.DisplayWord {
		if record, ok := progress[word.ID]; ok {
			return entity.DisplayWord{
				Word:        word,
				Familiarity: record.Familiarity,
				Stats:       record.Stats.Clone(),
			}
		}
		return entity.DisplayWord{Word: word, Familiarity: entity.FamiliarityNew}
	})
}

func (u *syncUsecase) localWords() ([]entity.DisplayWord, error) {
	words, err := u.cache.Load()
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return defaultDisplayWords(u.catalog), nil
	}
	return words, nil
}

// defaultDisplayWords renders the catalog with no progress attached.
func defaultDisplayWords(catalog []entity.Word) []entity.DisplayWord {
	return lo.Map(catalog, func(word entity.Word, _ int) entity.DisplayWord {
		return entity.DisplayWord{Word: word, Familiarity: entity.FamiliarityNew}
	})
}

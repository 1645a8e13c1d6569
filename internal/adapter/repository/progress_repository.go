package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/woorden/internal/entity"
	"github.com/eslsoft/woorden/internal/repository"
)

const progressColumns = `word_id, familiarity, view_count, mastered_count, unmastered_count,
	test_count, test_correct_count, test_wrong_count, last_viewed_at, last_tested_at,
	stats_reset, updated_at`

// ProgressRepository is the pgx-backed implementation of the remote
// progress store, keyed by (user_id, word_id).
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository constructs a Postgres-backed repository.
func NewProgressRepository(pool *pgxpool.Pool) repository.ProgressRepository {
	return &ProgressRepository{pool: pool}
}

func (r *ProgressRepository) LoadAll(ctx context.Context, userID string) (map[int64]entity.ProgressRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+progressColumns+` FROM user_progress WHERE user_id = $1`, userID)
	if err != nil {
		return nil, storeErr("load progress", err)
	}
	defer rows.Close()

	records := make(map[int64]entity.ProgressRecord)
	for rows.Next() {
		record, err := scanProgressRow(rows)
		if err != nil {
			return nil, storeErr("scan progress row", err)
		}
		records[record.WordID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("load progress", err)
	}
	return records, nil
}

func (r *ProgressRepository) Get(ctx context.Context, userID string, wordID int64) (*entity.ProgressRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+progressColumns+` FROM user_progress WHERE user_id = $1 AND word_id = $2`,
		userID, wordID)
	record, err := scanProgressRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get progress", err)
	}
	return &record, nil
}

func (r *ProgressRepository) Upsert(ctx context.Context, userID string, record entity.ProgressRecord) error {
	args := upsertArgs(userID, record)
	if _, err := r.pool.Exec(ctx, upsertSQL, args...); err != nil {
		return storeErr("upsert progress", err)
	}
	return nil
}

func (r *ProgressRepository) UpsertAll(ctx context.Context, userID string, records []entity.ProgressRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(upsertSQL, upsertArgs(userID, record)...)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return storeErr("batch upsert progress", err)
	}
	return nil
}

func (r *ProgressRepository) DeleteAll(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM user_progress WHERE user_id = $1`, userID); err != nil {
		return storeErr("delete progress", err)
	}
	return nil
}

const upsertSQL = `
INSERT INTO user_progress (
	user_id, word_id, familiarity, view_count, mastered_count, unmastered_count,
	test_count, test_correct_count, test_wrong_count, last_viewed_at, last_tested_at,
	stats_reset, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (user_id, word_id) DO UPDATE SET
	familiarity = EXCLUDED.familiarity,
	view_count = EXCLUDED.view_count,
	mastered_count = EXCLUDED.mastered_count,
	unmastered_count = EXCLUDED.unmastered_count,
	test_count = EXCLUDED.test_count,
	test_correct_count = EXCLUDED.test_correct_count,
	test_wrong_count = EXCLUDED.test_wrong_count,
	last_viewed_at = EXCLUDED.last_viewed_at,
	last_tested_at = EXCLUDED.last_tested_at,
	stats_reset = EXCLUDED.stats_reset,
	updated_at = EXCLUDED.updated_at`

func upsertArgs(userID string, record entity.ProgressRecord) []any {
	stats := record.Stats
	reset := stats == nil
	if reset {
		stats = &entity.LearningStats{}
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return []any{
		userID,
		record.WordID,
		string(record.Familiarity),
		stats.ViewCount,
		stats.MasteredCount,
		stats.UnmasteredCount,
		stats.TestCount,
		stats.TestCorrectCount,
		stats.TestWrongCount,
		stats.LastViewedAt,
		stats.LastTestedAt,
		reset,
		updatedAt,
	}
}

func scanProgressRow(row pgx.Row) (entity.ProgressRecord, error) {
	var (
		record entity.ProgressRecord
		stats  entity.LearningStats
		reset  bool
		level  string
	)
	err := row.Scan(
		&record.WordID,
		&level,
		&stats.ViewCount,
		&stats.MasteredCount,
		&stats.UnmasteredCount,
		&stats.TestCount,
		&stats.TestCorrectCount,
		&stats.TestWrongCount,
		&stats.LastViewedAt,
		&stats.LastTestedAt,
		&reset,
		&record.UpdatedAt,
	)
	if err != nil {
		return entity.ProgressRecord{}, err
	}
	record.Familiarity = entity.ParseFamiliarity(level)
	// A reset row keeps its familiarity but carries no counters.
	if !reset && !stats.IsZero() {
		record.Stats = &stats
	}
	return record, nil
}

// storeErr tags any backend failure as ErrStoreUnavailable so callers can
// degrade to the local cache with a single errors.Is check.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(entity.ErrStoreUnavailable, err))
}

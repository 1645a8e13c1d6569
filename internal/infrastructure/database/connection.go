package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"

	"github.com/eslsoft/woorden/internal/infrastructure/config"
)

// NewConnection creates a new pgx connection pool
func NewConnection(cfg *config.Config) (*pgxpool.Pool, func(), error) {
	if cfg.DatabaseDriver() != "postgres" {
		return nil, nil, fmt.Errorf("connection pool requires postgres, got driver %q", cfg.DatabaseDriver())
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = 10

	if cfg.Database.LogSQL {
		logger := log.New(log.Writer(), "pgx ", log.LstdFlags|log.Lmicroseconds)
		poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
				logger.Printf("level=%s msg=%s data=%v", lvl, msg, data)
			}),
			LogLevel: tracelog.LogLevelTrace,
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, pool.Close, fmt.Errorf("ping db: %w", err)
	}

	return pool, pool.Close, nil
}

// Schema is the progress table DDL, applied by the db-init command. The
// composite key carries the upsert conflict target.
const Schema = `CREATE TABLE IF NOT EXISTS user_progress (
	user_id            TEXT        NOT NULL,
	word_id            BIGINT      NOT NULL,
	familiarity        TEXT        NOT NULL DEFAULT 'new',
	view_count         INTEGER     NOT NULL DEFAULT 0,
	mastered_count     INTEGER     NOT NULL DEFAULT 0,
	unmastered_count   INTEGER     NOT NULL DEFAULT 0,
	test_count         INTEGER     NOT NULL DEFAULT 0,
	test_correct_count INTEGER     NOT NULL DEFAULT 0,
	test_wrong_count   INTEGER     NOT NULL DEFAULT 0,
	last_viewed_at     TIMESTAMPTZ,
	last_tested_at     TIMESTAMPTZ,
	stats_reset        BOOLEAN     NOT NULL DEFAULT FALSE,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, word_id)
)`

const userIndex = `CREATE INDEX IF NOT EXISTS idx_user_progress_user ON user_progress (user_id)`

// InitSchema creates the progress table and its index when missing.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range []string{Schema, userIndex} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

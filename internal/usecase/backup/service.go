// Package backup streams the user_progress table to and from a JSONL
// archive, one record per line with a leading meta record. The archive is
// database-agnostic: it can be exported from Postgres and imported into a
// SQLite file, or the other way around.
package backup

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	_ "github.com/lib/pq"           // ensure postgres driver available
	_ "github.com/mattn/go-sqlite3" // ensure sqlite driver available

	"github.com/eslsoft/woorden/internal/entity"
)

const (
	defaultBatchSize = 512
	formatVersion    = 1
	tableName        = "user_progress"
)

type Service struct {
	driver    string
	dsn       string
	batchSize int
}

type Option func(*Service)

func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService constructs a backup service bound to the provided database driver and DSN.
func NewService(driver, dsn string, opts ...Option) (*Service, error) {
	driver = strings.TrimSpace(strings.ToLower(driver))
	switch driver {
	case "postgres":
	case "sqlite", "sqlite3":
		driver = "sqlite3"
	case "":
		return nil, errors.New("backup: driver is required")
	default:
		return nil, fmt.Errorf("backup: unsupported driver %q", driver)
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("backup: DSN is required")
	}

	svc := &Service{
		driver:    driver,
		dsn:       dsn,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	userID string
}

// WithUser restricts export to a single user's rows.
func WithUser(userID string) ExportOption {
	return func(cfg *exportConfig) {
		cfg.userID = userID
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	userID string
}

// WithImportUser skips archive rows belonging to other users.
func WithImportUser(userID string) ImportOption {
	return func(cfg *importConfig) {
		cfg.userID = userID
	}
}

type record struct {
	Type       string     `json:"type"`
	Version    int        `json:"version,omitempty"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`
	RowCount   int        `json:"row_count,omitempty"`
	Payload    any        `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	RowCount   int             `json:"row_count"`
	Payload    json.RawMessage `json:"payload"`
}

// progressRow mirrors one user_progress row in the archive.
type progressRow struct {
	UserID           string     `json:"user_id"`
	WordID           int64      `json:"word_id"`
	Familiarity      string     `json:"familiarity"`
	ViewCount        int        `json:"view_count"`
	MasteredCount    int        `json:"mastered_count"`
	UnmasteredCount  int        `json:"unmastered_count"`
	TestCount        int        `json:"test_count"`
	TestCorrectCount int        `json:"test_correct_count"`
	TestWrongCount   int        `json:"test_wrong_count"`
	LastViewedAt     *time.Time `json:"last_viewed_at,omitempty"`
	LastTestedAt     *time.Time `json:"last_tested_at,omitempty"`
	StatsReset       bool       `json:"stats_reset"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	total, err := s.countRows(ctx, db, cfg.userID)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := time.Now().UTC()
	meta := record{
		Type:       "meta",
		Version:    formatVersion,
		ExportedAt: &now,
		RowCount:   total,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	batch := s.batchSize
	for offset := 0; ; offset += batch {
		rows, err := s.queryBatch(ctx, db, cfg.userID, batch, offset)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := writeRecord(writer, record{Type: tableName, Payload: row}); err != nil {
				return err
			}
		}
		if len(rows) < batch {
			break
		}
	}
	return writer.Flush()
}

func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) error {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	upsert := upsertStatement(s.driver)
	br := bufio.NewReader(r)
	var (
		metaSeen bool
		meta     rawRecord
	)

	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if jsonErr := json.Unmarshal(line, &rec); jsonErr != nil {
				return fmt.Errorf("decode record: %w", jsonErr)
			}

			switch rec.Type {
			case "meta":
				metaSeen = true
				meta = rec
			case tableName:
				if len(rec.Payload) == 0 {
					return errors.New("backup: missing payload for progress record")
				}
				var row progressRow
				if jsonErr := json.Unmarshal(rec.Payload, &row); jsonErr != nil {
					return fmt.Errorf("decode progress row: %w", jsonErr)
				}
				if cfg.userID != "" && row.UserID != cfg.userID {
					break
				}
				if rowErr := validateRow(row); rowErr != nil {
					return rowErr
				}
				if _, execErr := tx.ExecContext(ctx, upsert, rowArgs(row)...); execErr != nil {
					return fmt.Errorf("import row %s/%d: %w", row.UserID, row.WordID, execErr)
				}
			default:
				return fmt.Errorf("backup: unknown record type %q", rec.Type)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if !metaSeen {
		return errors.New("backup: missing meta record")
	}
	if meta.Version != formatVersion {
		return fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	commit = true
	return nil
}

func (s *Service) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func (s *Service) countRows(ctx context.Context, db *sql.DB, userID string) (int, error) {
	query := "SELECT COUNT(*) FROM " + tableName
	args := []any{}
	if userID != "" {
		query += " WHERE user_id = " + placeholder(s.driver, 1)
		args = append(args, userID)
	}
	var total int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return total, nil
}

const rowColumns = `user_id, word_id, familiarity, view_count, mastered_count, unmastered_count,
	test_count, test_correct_count, test_wrong_count, last_viewed_at, last_tested_at,
	stats_reset, updated_at`

func (s *Service) queryBatch(ctx context.Context, db *sql.DB, userID string, limit, offset int) ([]progressRow, error) {
	query := "SELECT " + rowColumns + " FROM " + tableName
	args := []any{}
	if userID != "" {
		query += " WHERE user_id = " + placeholder(s.driver, 1)
		args = append(args, userID)
	}
	query += fmt.Sprintf(" ORDER BY user_id, word_id LIMIT %d OFFSET %d", limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tableName, err)
	}
	defer rows.Close()

	out := make([]progressRow, 0, limit)
	for rows.Next() {
		var row progressRow
		if err := rows.Scan(
			&row.UserID,
			&row.WordID,
			&row.Familiarity,
			&row.ViewCount,
			&row.MasteredCount,
			&row.UnmasteredCount,
			&row.TestCount,
			&row.TestCorrectCount,
			&row.TestWrongCount,
			&row.LastViewedAt,
			&row.LastTestedAt,
			&row.StatsReset,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tableName, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", tableName, err)
	}
	return out, nil
}

func validateRow(row progressRow) error {
	if row.UserID == "" {
		return errors.New("backup: row missing user_id")
	}
	if row.WordID <= 0 {
		return fmt.Errorf("backup: row for %s has invalid word_id %d", row.UserID, row.WordID)
	}
	if !entity.ValidFamiliarity(row.Familiarity) {
		return fmt.Errorf("backup: row %s/%d has unknown familiarity %q", row.UserID, row.WordID, row.Familiarity)
	}
	return nil
}

func rowArgs(row progressRow) []any {
	return []any{
		row.UserID,
		row.WordID,
		row.Familiarity,
		row.ViewCount,
		row.MasteredCount,
		row.UnmasteredCount,
		row.TestCount,
		row.TestCorrectCount,
		row.TestWrongCount,
		row.LastViewedAt,
		row.LastTestedAt,
		row.StatsReset,
		row.UpdatedAt,
	}
}

func upsertStatement(driver string) string {
	placeholders := make([]string, 13)
	for i := range placeholders {
		placeholders[i] = placeholder(driver, i+1)
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
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
	updated_at = EXCLUDED.updated_at`,
		tableName, rowColumns, strings.Join(placeholders, ", "))
}

func placeholder(driver string, n int) string {
	if driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

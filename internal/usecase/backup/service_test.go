package backup

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSchema = `
CREATE TABLE user_progress (
	user_id TEXT NOT NULL,
	word_id INTEGER NOT NULL,
	familiarity TEXT NOT NULL,
	view_count INTEGER NOT NULL DEFAULT 0,
	mastered_count INTEGER NOT NULL DEFAULT 0,
	unmastered_count INTEGER NOT NULL DEFAULT 0,
	test_count INTEGER NOT NULL DEFAULT 0,
	test_correct_count INTEGER NOT NULL DEFAULT 0,
	test_wrong_count INTEGER NOT NULL DEFAULT 0,
	last_viewed_at TIMESTAMP,
	last_tested_at TIMESTAMP,
	stats_reset BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, word_id)
)`

const alice = "5b2e6f6a-1d41-4c57-9f9d-47082d6c0001"
const bob = "5b2e6f6a-1d41-4c57-9f9d-47082d6c0002"

func openTestDB(t *testing.T, name string) (*sql.DB, string) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), name) + "?cache=shared"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Skipf("sqlite driver not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping sqlite-dependent tests: %v", err)
	}
	if _, err := db.Exec(testSchema); err != nil {
		db.Close()
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dsn
}

func seedRow(t *testing.T, db *sql.DB, userID string, wordID int64, familiarity string, views int, viewedAt time.Time) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO user_progress (
		user_id, word_id, familiarity, view_count, mastered_count, unmastered_count,
		test_count, test_correct_count, test_wrong_count, last_viewed_at, last_tested_at,
		stats_reset, updated_at
	) VALUES (?, ?, ?, ?, 0, 0, 0, 0, 0, ?, NULL, FALSE, ?)`,
		userID, wordID, familiarity, views, viewedAt, viewedAt)
	if err != nil {
		t.Fatalf("seed row: %v", err)
	}
}

func countRows(t *testing.T, db *sql.DB, userID string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_progress WHERE user_id = ?`, userID).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestServiceExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	seededAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	srcDB, srcDSN := openTestDB(t, "src.db")
	seedRow(t, srcDB, alice, 7, "familiar", 5, seededAt)
	seedRow(t, srcDB, alice, 8, "new", 1, seededAt)
	seedRow(t, srcDB, bob, 7, "mastered", 9, seededAt)

	exporter, err := NewService("sqlite3", srcDSN)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}

	var buf bytes.Buffer
	if err := exporter.Export(ctx, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected meta + 3 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], `"type":"meta"`) || !strings.Contains(lines[0], `"row_count":3`) {
		t.Errorf("unexpected meta record: %s", lines[0])
	}

	dstDB, dstDSN := openTestDB(t, "dst.db")

	importer, err := NewService("sqlite", dstDSN)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}
	if err := importer.Import(ctx, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if got := countRows(t, dstDB, alice); got != 2 {
		t.Errorf("alice rows = %d, want 2", got)
	}
	if got := countRows(t, dstDB, bob); got != 1 {
		t.Errorf("bob rows = %d, want 1", got)
	}

	var familiarity string
	var views int
	err = dstDB.QueryRow(`SELECT familiarity, view_count FROM user_progress WHERE user_id = ? AND word_id = 7`, alice).
		Scan(&familiarity, &views)
	if err != nil {
		t.Fatalf("read imported row: %v", err)
	}
	if familiarity != "familiar" || views != 5 {
		t.Errorf("imported row = (%s, %d), want (familiar, 5)", familiarity, views)
	}
}

func TestServiceImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	seededAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	srcDB, srcDSN := openTestDB(t, "src.db")
	seedRow(t, srcDB, alice, 7, "learning", 3, seededAt)

	svc, err := NewService("sqlite3", srcDSN)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	// Importing into the source twice leaves the same single row.
	for i := 0; i < 2; i++ {
		if err := svc.Import(ctx, bytes.NewReader(buf.Bytes())); err != nil {
			t.Fatalf("import %d failed: %v", i+1, err)
		}
	}
	if got := countRows(t, srcDB, alice); got != 1 {
		t.Errorf("rows after re-import = %d, want 1", got)
	}
}

func TestServiceExportUserFilter(t *testing.T) {
	ctx := context.Background()
	seededAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	srcDB, srcDSN := openTestDB(t, "src.db")
	seedRow(t, srcDB, alice, 7, "familiar", 5, seededAt)
	seedRow(t, srcDB, bob, 7, "mastered", 9, seededAt)

	exporter, err := NewService("sqlite3", srcDSN)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}

	var buf bytes.Buffer
	if err := exporter.Export(ctx, &buf, WithUser(alice)); err != nil {
		t.Fatalf("filtered export failed: %v", err)
	}
	if strings.Contains(buf.String(), bob) {
		t.Error("filtered export leaked another user's rows")
	}

	dstDB, dstDSN := openTestDB(t, "dst.db")
	importer, err := NewService("sqlite3", dstDSN)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}
	if err := importer.Import(ctx, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if got := countRows(t, dstDB, bob); got != 0 {
		t.Errorf("expected no rows for filtered-out user, got %d", got)
	}
	if got := countRows(t, dstDB, alice); got != 1 {
		t.Errorf("alice rows = %d, want 1", got)
	}
}

func TestServiceImportRejectsBadData(t *testing.T) {
	ctx := context.Background()
	_, dsn := openTestDB(t, "dst.db")

	svc, err := NewService("sqlite3", dsn)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cases := []struct {
		name    string
		archive string
	}{
		{"missing meta", `{"type":"user_progress","payload":{"user_id":"u","word_id":1,"familiarity":"new","updated_at":"2024-03-10T12:00:00Z"}}`},
		{"unknown type", `{"type":"meta","version":1}` + "\n" + `{"type":"words","payload":{}}`},
		{"bad familiarity", `{"type":"meta","version":1}` + "\n" + `{"type":"user_progress","payload":{"user_id":"u","word_id":1,"familiarity":"fluent","updated_at":"2024-03-10T12:00:00Z"}}`},
		{"wrong version", `{"type":"meta","version":99}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Import(ctx, strings.NewReader(tc.archive)); err == nil {
				t.Error("expected import to fail")
			}
		})
	}
}

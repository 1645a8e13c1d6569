package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eslsoft/woorden/internal/entity"
)

const testUser = "5b2e6f6a-1d41-4c57-9f9d-47082d6c0001"

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestRecorder(t *testing.T) (*progressUsecase, *fakeProgressRepo, *fakeCacheStore) {
	t.Helper()
	repo := newFakeProgressRepo()
	cache := &fakeCacheStore{}
	uc := NewProgressUsecase(repo, cache, testCatalog(), silentLogger()).(*progressUsecase)
	uc.clock = func() time.Time { return fixedNow }
	return uc, repo, cache
}

func TestRecordViewFirstInteraction(t *testing.T) {
	uc, repo, cache := newTestRecorder(t)

	record, err := uc.RecordView(context.Background(), testUser, 7)
	if err != nil {
		t.Fatalf("RecordView returned error: %v", err)
	}
	if record.Stats.ViewCount != 1 {
		t.Errorf("expected viewCount 1, got %d", record.Stats.ViewCount)
	}
	if record.Stats.LastViewedAt == nil || !record.Stats.LastViewedAt.Equal(fixedNow) {
		t.Errorf("expected lastViewedAt %v, got %v", fixedNow, record.Stats.LastViewedAt)
	}
	// A single view does not change the label.
	if record.Familiarity != entity.FamiliarityNew {
		t.Errorf("expected familiarity new after first view, got %q", record.Familiarity)
	}

	stored, ok := repo.get(testUser, 7)
	if !ok {
		t.Fatal("expected remote record to exist")
	}
	if stored.Stats.ViewCount != 1 {
		t.Errorf("remote viewCount = %d, want 1", stored.Stats.ViewCount)
	}
	cached, _ := cache.Load()
	if len(cached) != 3 {
		t.Fatalf("expected full catalog in cache, got %d entries", len(cached))
	}
	if cached[0].ID != 7 || cached[0].Stats == nil || cached[0].Stats.ViewCount != 1 {
		t.Errorf("cache not updated: %+v", cached[0])
	}
}

func TestRecordViewMonotonic(t *testing.T) {
	uc, repo, _ := newTestRecorder(t)
	ctx := context.Background()

	var prev entity.LearningStats
	for i := 1; i <= 5; i++ {
		record, err := uc.RecordView(ctx, testUser, 7)
		if err != nil {
			t.Fatalf("RecordView %d returned error: %v", i, err)
		}
		stats := record.Stats
		if stats.ViewCount != i {
			t.Fatalf("view %d: viewCount = %d, want %d", i, stats.ViewCount, i)
		}
		if stats.MasteredCount < prev.MasteredCount || stats.UnmasteredCount < prev.UnmasteredCount ||
			stats.TestCount < prev.TestCount || stats.TestCorrectCount < prev.TestCorrectCount ||
			stats.TestWrongCount < prev.TestWrongCount {
			t.Fatalf("view %d decreased another counter: %+v -> %+v", i, prev, *stats)
		}
		prev = *stats
	}
	stored, _ := repo.get(testUser, 7)
	if stored.Stats.ViewCount != 5 {
		t.Errorf("remote viewCount = %d, want 5", stored.Stats.ViewCount)
	}
}

func TestRecordTestResultCounters(t *testing.T) {
	uc, _, _ := newTestRecorder(t)
	ctx := context.Background()

	for _, correct := range []bool{true, true, false, true} {
		if _, err := uc.RecordTestResult(ctx, testUser, 7, correct); err != nil {
			t.Fatalf("RecordTestResult returned error: %v", err)
		}
	}
	record, err := uc.RecordView(ctx, testUser, 7)
	if err != nil {
		t.Fatal(err)
	}
	stats := record.Stats
	if stats.TestCount != 4 || stats.TestCorrectCount != 3 || stats.TestWrongCount != 1 {
		t.Fatalf("unexpected counters: %+v", *stats)
	}
	if stats.TestCorrectCount+stats.TestWrongCount > stats.TestCount {
		t.Fatalf("counter invariant violated: %+v", *stats)
	}
}

// A caller holding a stale snapshot must not clobber counters the store
// already advanced: the recorder re-fetches the latest row before writing.
func TestRecordTestResultReadModifyWrite(t *testing.T) {
	uc, repo, cache := newTestRecorder(t)
	ctx := context.Background()

	// First update lands remotely.
	if _, err := uc.RecordTestResult(ctx, testUser, 7, true); err != nil {
		t.Fatal(err)
	}
	// The local cache is rolled back to simulate a second client whose
	// in-memory state predates the first write.
	if err := cache.Save(defaultDisplayWords(testCatalog())); err != nil {
		t.Fatal(err)
	}

	record, err := uc.RecordTestResult(ctx, testUser, 7, false)
	if err != nil {
		t.Fatal(err)
	}
	if record.Stats.TestCount != 2 {
		t.Fatalf("lost update: testCount = %d, want 2", record.Stats.TestCount)
	}
	if record.Stats.TestCorrectCount != 1 || record.Stats.TestWrongCount != 1 {
		t.Fatalf("unexpected counters: %+v", *record.Stats)
	}
	stored, _ := repo.get(testUser, 7)
	if stored.Stats.TestCount != 2 {
		t.Fatalf("remote testCount = %d, want 2", stored.Stats.TestCount)
	}
}

func TestRecordTestResultDowngradesUnearnedMastered(t *testing.T) {
	uc, _, _ := newTestRecorder(t)
	ctx := context.Background()

	// User self-marks mastered without evidence.
	record, err := uc.RecordMasteryToggle(ctx, testUser, 7, entity.FamiliarityMastered)
	if err != nil {
		t.Fatal(err)
	}
	if record.Familiarity != entity.FamiliarityMastered {
		t.Fatalf("expected mastered after toggle, got %q", record.Familiarity)
	}

	// A string of wrong answers pulls the label back down.
	for i := 0; i < 4; i++ {
		record, err = uc.RecordTestResult(ctx, testUser, 7, false)
		if err != nil {
			t.Fatal(err)
		}
	}
	if record.Familiarity == entity.FamiliarityMastered {
		t.Fatalf("expected downgrade after failed tests, got %q", record.Familiarity)
	}
}

func TestRecordMasteryToggleDirections(t *testing.T) {
	uc, _, _ := newTestRecorder(t)
	ctx := context.Background()

	record, err := uc.RecordMasteryToggle(ctx, testUser, 8, entity.FamiliarityMastered)
	if err != nil {
		t.Fatal(err)
	}
	if record.Stats.MasteredCount != 1 || record.Stats.UnmasteredCount != 0 {
		t.Fatalf("unexpected counters after mastered toggle: %+v", *record.Stats)
	}

	record, err = uc.RecordMasteryToggle(ctx, testUser, 8, entity.FamiliarityLearning)
	if err != nil {
		t.Fatal(err)
	}
	if record.Stats.MasteredCount != 1 || record.Stats.UnmasteredCount != 1 {
		t.Fatalf("unexpected counters after learning toggle: %+v", *record.Stats)
	}
	// Lower overrides are honored verbatim.
	if record.Familiarity != entity.FamiliarityLearning {
		t.Errorf("expected learning, got %q", record.Familiarity)
	}
}

func TestRecordMasteryToggleRejectsUnknownLevel(t *testing.T) {
	uc, _, _ := newTestRecorder(t)
	if _, err := uc.RecordMasteryToggle(context.Background(), testUser, 8, "expert"); err != entity.ErrInvalidFamiliarity {
		t.Fatalf("expected ErrInvalidFamiliarity, got %v", err)
	}
}

func TestRecordViewDegradesToLocalOnRemoteFailure(t *testing.T) {
	uc, repo, cache := newTestRecorder(t)
	ctx := context.Background()

	if _, err := uc.RecordView(ctx, testUser, 7); err != nil {
		t.Fatal(err)
	}
	repo.setUnavailable(true)

	record, err := uc.RecordView(ctx, testUser, 7)
	if err != nil {
		t.Fatalf("remote outage must not fail the operation: %v", err)
	}
	if record.Stats.ViewCount != 2 {
		t.Fatalf("expected local continuation at viewCount 2, got %d", record.Stats.ViewCount)
	}
	cached, _ := cache.Load()
	if cached[0].Stats == nil || cached[0].Stats.ViewCount != 2 {
		t.Errorf("local cache not updated during outage: %+v", cached[0])
	}
}

func TestGuestModeSkipsRemote(t *testing.T) {
	uc, repo, cache := newTestRecorder(t)
	ctx := context.Background()

	record, err := uc.RecordView(ctx, "", 7)
	if err != nil {
		t.Fatal(err)
	}
	if record.Stats.ViewCount != 1 {
		t.Fatalf("expected viewCount 1, got %d", record.Stats.ViewCount)
	}
	if repo.upserts != 0 {
		t.Errorf("guest mode must not touch the remote store, saw %d upserts", repo.upserts)
	}
	if cache.saves == 0 {
		t.Error("guest progress must be cached locally")
	}
}

func TestSaveAllPersistsEveryWord(t *testing.T) {
	uc, repo, _ := newTestRecorder(t)
	ctx := context.Background()

	words := defaultDisplayWords(testCatalog())
	words[0].Familiarity = entity.FamiliarityFamiliar
	words[0].Stats = &entity.LearningStats{ViewCount: 2, TestCount: 2, TestCorrectCount: 2}

	if err := uc.SaveAll(ctx, testUser, words); err != nil {
		t.Fatal(err)
	}
	for _, word := range words {
		stored, ok := repo.get(testUser, word.ID)
		if !ok {
			t.Fatalf("word %d missing remotely", word.ID)
		}
		if stored.Familiarity != word.Familiarity {
			t.Errorf("word %d familiarity = %q, want %q", word.ID, stored.Familiarity, word.Familiarity)
		}
	}
}

func TestResetClearsRemoteAndLocal(t *testing.T) {
	uc, repo, cache := newTestRecorder(t)
	ctx := context.Background()

	if _, err := uc.RecordTestResult(ctx, testUser, 7, true); err != nil {
		t.Fatal(err)
	}

	words, err := uc.Reset(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 3 {
		t.Fatalf("expected full default list, got %d entries", len(words))
	}
	for _, word := range words {
		if word.Familiarity != entity.FamiliarityNew || word.Stats != nil {
			t.Errorf("word %d not reset: %+v", word.ID, word)
		}
	}
	if _, ok := repo.get(testUser, 7); ok {
		t.Error("remote record survived reset")
	}
	cached, _ := cache.Load()
	if cached[0].Stats != nil || cached[0].Familiarity != entity.FamiliarityNew {
		t.Errorf("cache not reset: %+v", cached[0])
	}
}

func TestFlushPendingReplaysFailedWrites(t *testing.T) {
	uc, repo, _ := newTestRecorder(t)
	ctx := context.Background()

	repo.setUnavailable(true)
	if _, err := uc.RecordView(ctx, testUser, 7); err != nil {
		t.Fatalf("RecordView with remote down: %v", err)
	}
	if _, err := uc.RecordView(ctx, testUser, 7); err != nil {
		t.Fatalf("second RecordView with remote down: %v", err)
	}
	if _, ok := repo.get(testUser, 7); ok {
		t.Fatal("remote should have nothing while down")
	}

	// Still down: flush fails and keeps the record queued.
	if err := uc.FlushPending(ctx); err == nil {
		t.Fatal("expected flush error while remote is down")
	}

	repo.setUnavailable(false)
	if err := uc.FlushPending(ctx); err != nil {
		t.Fatalf("FlushPending after recovery: %v", err)
	}
	stored, ok := repo.get(testUser, 7)
	if !ok {
		t.Fatal("expected remote record after flush")
	}
	if stored.Stats.ViewCount != 2 {
		t.Errorf("remote viewCount = %d, want 2 (latest queued write wins)", stored.Stats.ViewCount)
	}

	// Queue drained: a second flush writes nothing.
	before := repo.upserts
	if err := uc.FlushPending(ctx); err != nil {
		t.Fatalf("FlushPending on empty queue: %v", err)
	}
	if repo.upserts != before {
		t.Errorf("empty flush performed %d extra upserts", repo.upserts-before)
	}
}

func TestRecordViewRejectsUnknownWord(t *testing.T) {
	uc, repo, _ := newTestRecorder(t)

	if _, err := uc.RecordView(context.Background(), testUser, 999); !errors.Is(err, entity.ErrWordNotFound) {
		t.Fatalf("expected ErrWordNotFound, got %v", err)
	}
	if _, ok := repo.get(testUser, 999); ok {
		t.Error("nothing should be stored for an unknown word")
	}
	if _, err := uc.RecordTestResult(context.Background(), testUser, -1, true); !errors.Is(err, entity.ErrInvalidWordID) {
		t.Fatalf("expected ErrInvalidWordID, got %v", err)
	}
}

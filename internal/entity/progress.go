package entity

import (
	"strings"
	"time"
)

// FamiliarityLevel is the categorical proficiency label attached to a word.
type FamiliarityLevel string

const (
	FamiliarityNew      FamiliarityLevel = "new"
	FamiliarityLearning FamiliarityLevel = "learning"
	FamiliarityFamiliar FamiliarityLevel = "familiar"
	FamiliarityMastered FamiliarityLevel = "mastered"
)

// ParseFamiliarity converts an arbitrary string into a level, falling back
// to FamiliarityNew for anything unknown.
func ParseFamiliarity(s string) FamiliarityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "learning":
		return FamiliarityLearning
	case "familiar":
		return FamiliarityFamiliar
	case "mastered":
		return FamiliarityMastered
	default:
		return FamiliarityNew
	}
}

// ValidFamiliarity reports whether s names one of the four levels.
func ValidFamiliarity(s string) bool {
	switch FamiliarityLevel(strings.ToLower(strings.TrimSpace(s))) {
	case FamiliarityNew, FamiliarityLearning, FamiliarityFamiliar, FamiliarityMastered:
		return true
	default:
		return false
	}
}

// LearningStats accumulates per-word interaction counters. A nil
// *LearningStats is equivalent to the zero value: a word never interacted
// with. Updates never mutate in place; the With* helpers return a copy so a
// caller always replaces the stored record with the full new value.
type LearningStats struct {
	ViewCount        int        `json:"viewCount"`
	MasteredCount    int        `json:"masteredCount"`
	UnmasteredCount  int        `json:"unmasteredCount"`
	TestCount        int        `json:"testCount"`
	TestCorrectCount int        `json:"testCorrectCount"`
	TestWrongCount   int        `json:"testWrongCount"`
	LastViewedAt     *time.Time `json:"lastViewedAt,omitempty"`
	LastTestedAt     *time.Time `json:"lastTestedAt,omitempty"`
}

// IsZero reports whether no interaction has ever been recorded.
func (s *LearningStats) IsZero() bool {
	if s == nil {
		return true
	}
	return s.ViewCount == 0 && s.MasteredCount == 0 && s.UnmasteredCount == 0 &&
		s.TestCount == 0 && s.TestCorrectCount == 0 && s.TestWrongCount == 0
}

// Accuracy returns the test accuracy in [0,1], or 0 when no tests were taken.
func (s *LearningStats) Accuracy() float64 {
	if s == nil || s.TestCount == 0 {
		return 0
	}
	return float64(s.TestCorrectCount) / float64(s.TestCount)
}

// orEmpty returns a value copy of s, treating nil as all-zero.
func (s *LearningStats) orEmpty() LearningStats {
	if s == nil {
		return LearningStats{}
	}
	return *s
}

// WithView returns a copy with ViewCount incremented and LastViewedAt set.
func (s *LearningStats) WithView(now time.Time) *LearningStats {
	next := s.orEmpty()
	next.ViewCount++
	next.LastViewedAt = &now
	return &next
}

// WithMasteryMark returns a copy with the mastered or unmastered counter
// incremented, depending on whether the user's toggle moved to mastered.
func (s *LearningStats) WithMasteryMark(mastered bool) *LearningStats {
	next := s.orEmpty()
	if mastered {
		next.MasteredCount++
	} else {
		next.UnmasteredCount++
	}
	return &next
}

// WithTestResult returns a copy with TestCount and the matching
// correct/wrong counter incremented together, and LastTestedAt set. The two
// increments happen in the same copy, which keeps
// TestCorrectCount+TestWrongCount <= TestCount.
func (s *LearningStats) WithTestResult(correct bool, now time.Time) *LearningStats {
	next := s.orEmpty()
	next.TestCount++
	if correct {
		next.TestCorrectCount++
	} else {
		next.TestWrongCount++
	}
	next.LastTestedAt = &now
	return &next
}

// Clone returns a deep copy, or nil for nil.
func (s *LearningStats) Clone() *LearningStats {
	if s == nil {
		return nil
	}
	next := *s
	if s.LastViewedAt != nil {
		t := *s.LastViewedAt
		next.LastViewedAt = &t
	}
	if s.LastTestedAt != nil {
		t := *s.LastTestedAt
		next.LastTestedAt = &t
	}
	return &next
}

// ProgressRecord is the per-(user, word) learning state as persisted in the
// progress store. Stats is nil for reset rows and for words the user never
// touched.
type ProgressRecord struct {
	WordID      int64            `json:"wordId"`
	Familiarity FamiliarityLevel `json:"familiarity"`
	Stats       *LearningStats   `json:"stats,omitempty"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// DisplayWord is a catalog entry merged with the user's progress. It is
// rebuilt on every load and never persisted remotely as such; the local
// cache stores the full list as one blob.
type DisplayWord struct {
	Word
	Familiarity FamiliarityLevel `json:"familiarity"`
	Stats       *LearningStats   `json:"stats,omitempty"`
}

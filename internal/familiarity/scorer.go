// Package familiarity derives a categorical proficiency level from the raw
// interaction counters of a word. Scoring blends four weighted components
// with an optional user-chosen override, mirroring how the product weighs
// tested evidence above self-assessment.
package familiarity

import (
	"math"
	"time"

	"github.com/eslsoft/woorden/internal/entity"
)

// Component weights and thresholds. The values are behavior-compatible with
// the shipped scoring model; treat them as tunable knobs, not derived
// quantities.
const (
	testWeight     = 40
	masteryWeight  = 30
	exposureWeight = 20
	recencyWeight  = 10

	exposurePerView = 2

	recencyFullDays  = 7
	recencyDecayDays = 23 // linear decay window after recencyFullDays

	learningMax = 39
	familiarMax = 69

	// A self-marked "mastered" is downgraded when tests contradict it.
	overrideMinTests    = 2
	overrideMinAccuracy = 0.5

	// A high score alone cannot reach mastered without tested evidence.
	masteredMinTests    = 3
	masteredMinAccuracy = 0.7
)

// Score computes the numeric familiarity score in [0,100] for a stats
// snapshot at the given wall-clock time. All-zero (or nil) stats score 0.
//
// Components: test accuracy (40), mastery-mark tendency (30), exposure (20,
// two points per view), recency (10, decaying between 7 and 30 days since
// the last view or test).
func Score(stats *entity.LearningStats, now time.Time) int {
	if stats.IsZero() {
		return 0
	}

	var testScore float64
	if stats.TestCount > 0 {
		testScore = stats.Accuracy() * testWeight
	}

	var masteryScore float64
	if marks := stats.MasteredCount + stats.UnmasteredCount; marks > 0 {
		masteryScore = float64(stats.MasteredCount) / float64(marks) * masteryWeight
	}

	viewScore := float64(stats.ViewCount * exposurePerView)
	if viewScore > exposureWeight {
		viewScore = exposureWeight
	}

	var timeScore float64
	if last := lastActivity(stats); last != nil {
		days := now.Sub(*last).Hours() / 24
		switch {
		case days <= recencyFullDays:
			timeScore = recencyWeight
		case days <= recencyFullDays+recencyDecayDays:
			timeScore = recencyWeight * (1 - (days-recencyFullDays)/recencyDecayDays)
		}
	}

	return int(math.Round(testScore + masteryScore + viewScore + timeScore))
}

// Level derives the familiarity level for a stats snapshot, blending an
// optional user override. Pass entity.FamiliarityLevel("") for no override.
//
// The override is honored verbatim except for "mastered", which is
// downgraded when at least two tests were taken with under 50% accuracy.
// Without an override the level follows the score thresholds, with the
// extra gate that "mastered" requires at least three tests at 70% accuracy.
func Level(stats *entity.LearningStats, override entity.FamiliarityLevel, now time.Time) entity.FamiliarityLevel {
	if stats.IsZero() {
		return entity.FamiliarityNew
	}

	score := Score(stats, now)

	switch override {
	case entity.FamiliarityMastered:
		if stats.TestCount >= overrideMinTests && stats.Accuracy() < overrideMinAccuracy {
			if score <= learningMax {
				return entity.FamiliarityLearning
			}
			return entity.FamiliarityFamiliar
		}
		return entity.FamiliarityMastered
	case entity.FamiliarityNew, entity.FamiliarityLearning, entity.FamiliarityFamiliar:
		return override
	}

	switch {
	case score <= learningMax:
		return entity.FamiliarityLearning
	case score <= familiarMax:
		return entity.FamiliarityFamiliar
	}

	if stats.TestCount >= masteredMinTests && stats.Accuracy() >= masteredMinAccuracy {
		return entity.FamiliarityMastered
	}
	return entity.FamiliarityFamiliar
}

// lastActivity returns the more recent of the view and test timestamps.
func lastActivity(stats *entity.LearningStats) *time.Time {
	viewed, tested := stats.LastViewedAt, stats.LastTestedAt
	switch {
	case tested == nil:
		return viewed
	case viewed == nil:
		return tested
	case viewed.After(*tested):
		return viewed
	default:
		return tested
	}
}

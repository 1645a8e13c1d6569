package entity

import "strings"

// PartOfSpeech classifies a catalog entry grammatically.
type PartOfSpeech string

const (
	PartOfSpeechNoun         PartOfSpeech = "noun"
	PartOfSpeechVerb         PartOfSpeech = "verb"
	PartOfSpeechAdjective    PartOfSpeech = "adjective"
	PartOfSpeechAdverb       PartOfSpeech = "adverb"
	PartOfSpeechPronoun      PartOfSpeech = "pronoun"
	PartOfSpeechPreposition  PartOfSpeech = "preposition"
	PartOfSpeechConjunction  PartOfSpeech = "conjunction"
	PartOfSpeechInterjection PartOfSpeech = "interjection"
	PartOfSpeechPhrase       PartOfSpeech = "phrase"
	PartOfSpeechOther        PartOfSpeech = "other"
)

// Article is the Dutch definite article of a noun.
type Article string

const (
	ArticleDe  Article = "de"
	ArticleHet Article = "het"
)

// Difficulty represents a CEFR level from A1 up to C2.
type Difficulty string

const (
	DifficultyA1 Difficulty = "A1"
	DifficultyA2 Difficulty = "A2"
	DifficultyB1 Difficulty = "B1"
	DifficultyB2 Difficulty = "B2"
	DifficultyC1 Difficulty = "C1"
	DifficultyC2 Difficulty = "C2"
)

// Word is a static catalog entry. It is loaded once from the corpus at
// startup and never mutated afterwards; user progress lives in
// ProgressRecord, keyed by the word ID.
type Word struct {
	ID           int64               `json:"id"`
	Text         string              `json:"word"`
	Translation  Translation         `json:"translation"`
	PartOfSpeech PartOfSpeech        `json:"partOfSpeech"`
	Forms        *WordForms          `json:"forms,omitempty"`
	Examples     []string            `json:"examples"`
	ExampleTrans *ExampleTranslation `json:"exampleTranslations,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	Difficulty   Difficulty          `json:"difficulty"`
}

// Translation holds the target-language renderings of a headword.
type Translation struct {
	Chinese string `json:"chinese"`
	English string `json:"english"`
}

// ExampleTranslation carries per-language translations of the example
// sentences, index-aligned with Word.Examples.
type ExampleTranslation struct {
	Chinese []string `json:"chinese"`
	English []string `json:"english"`
}

// WordForms bundles the part-of-speech specific morphology. At most one of
// the members is set, matching the entry's PartOfSpeech.
type WordForms struct {
	Noun      *NounInfo        `json:"noun,omitempty"`
	Verb      *VerbConjugation `json:"verb,omitempty"`
	Adjective *AdjectiveForms  `json:"adjective,omitempty"`
}

// NounInfo captures article and number forms of a noun.
type NounInfo struct {
	Article                Article `json:"article"`
	Singular               string  `json:"singular"`
	Plural                 string  `json:"plural"`
	UncountablePreposition string  `json:"uncountablePreposition,omitempty"`
}

// PresentTense is the six-person present conjugation of a verb.
type PresentTense struct {
	Ik     string `json:"ik"`
	Jij    string `json:"jij"`
	Hij    string `json:"hij"`
	Wij    string `json:"wij"`
	Jullie string `json:"jullie"`
	Zij    string `json:"zij"`
}

// PastTense holds the singular and plural simple past forms.
type PastTense struct {
	Singular string `json:"singular"`
	Plural   string `json:"plural"`
}

// VerbConjugation captures the conjugation table of a verb, including
// separable-verb metadata.
type VerbConjugation struct {
	Infinitive     string       `json:"infinitive"`
	Separable      bool         `json:"isSeparable,omitempty"`
	Prefix         string       `json:"prefix,omitempty"`
	Present        PresentTense `json:"present"`
	Past           PastTense    `json:"past"`
	PastParticiple string       `json:"pastParticiple"`
}

// AdjectiveForms captures inflected and graded adjective forms.
type AdjectiveForms struct {
	Base        string `json:"base"`
	WithDe      string `json:"withDe"`
	WithHet     string `json:"withHet"`
	Comparative string `json:"comparative"`
	Superlative string `json:"superlative"`
}

// ParsePartOfSpeech converts an arbitrary string into a known tag.
func ParsePartOfSpeech(s string) PartOfSpeech {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noun":
		return PartOfSpeechNoun
	case "verb":
		return PartOfSpeechVerb
	case "adjective":
		return PartOfSpeechAdjective
	case "adverb":
		return PartOfSpeechAdverb
	case "pronoun":
		return PartOfSpeechPronoun
	case "preposition":
		return PartOfSpeechPreposition
	case "conjunction":
		return PartOfSpeechConjunction
	case "interjection":
		return PartOfSpeechInterjection
	case "phrase":
		return PartOfSpeechPhrase
	default:
		return PartOfSpeechOther
	}
}

// ValidDifficulty reports whether d is one of the six CEFR levels.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyA1, DifficultyA2, DifficultyB1, DifficultyB2, DifficultyC1, DifficultyC2:
		return true
	default:
		return false
	}
}

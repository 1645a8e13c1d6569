package catalog

import (
	"fmt"

	"github.com/eslsoft/woorden/internal/entity"
)

// Issue is a single validation finding against a corpus entry.
type Issue struct {
	WordID int64
	Word   string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("word %d (%s): %s", i.WordID, i.Word, i.Detail)
}

// Validate checks the corpus against the schema rules: required base
// fields, a known CEFR level, at least two translation languages, and the
// part-of-speech specific form tables. It is a build-time gate; the
// runtime never calls it.
func Validate(words []entity.Word) []Issue {
	var issues []Issue
	report := func(word entity.Word, format string, args ...any) {
		issues = append(issues, Issue{WordID: word.ID, Word: word.Text, Detail: fmt.Sprintf(format, args...)})
	}

	for _, word := range words {
		if word.Text == "" {
			report(word, "missing headword")
		}
		if word.Translation.Chinese == "" || word.Translation.English == "" {
			report(word, "translation requires both chinese and english")
		}
		if !entity.ValidDifficulty(word.Difficulty) {
			report(word, "difficulty %q is not a CEFR level", word.Difficulty)
		}
		if len(word.Examples) == 0 {
			report(word, "at least one example sentence required")
		}
		if word.ExampleTrans != nil {
			if len(word.ExampleTrans.Chinese) != len(word.Examples) || len(word.ExampleTrans.English) != len(word.Examples) {
				report(word, "example translations not aligned with examples")
			}
		}

		switch word.PartOfSpeech {
		case entity.PartOfSpeechNoun:
			validateNoun(word, report)
		case entity.PartOfSpeechVerb:
			validateVerb(word, report)
		case entity.PartOfSpeechAdjective:
			validateAdjective(word, report)
		}
	}
	return issues
}

func validateNoun(word entity.Word, report func(entity.Word, string, ...any)) {
	if word.Forms == nil || word.Forms.Noun == nil {
		report(word, "noun requires article, singular and plural forms")
		return
	}
	noun := word.Forms.Noun
	if noun.Article != entity.ArticleDe && noun.Article != entity.ArticleHet {
		report(word, "noun article must be de or het, got %q", noun.Article)
	}
	if noun.Singular == "" {
		report(word, "noun missing singular form")
	}
	if noun.Plural == "" {
		report(word, "noun missing plural form")
	}
}

func validateVerb(word entity.Word, report func(entity.Word, string, ...any)) {
	if word.Forms == nil || word.Forms.Verb == nil {
		report(word, "verb requires a conjugation table")
		return
	}
	verb := word.Forms.Verb
	if verb.Infinitive == "" {
		report(word, "verb missing infinitive")
	}
	present := map[string]string{
		"ik":     verb.Present.Ik,
		"jij":    verb.Present.Jij,
		"hij":    verb.Present.Hij,
		"wij":    verb.Present.Wij,
		"jullie": verb.Present.Jullie,
		"zij":    verb.Present.Zij,
	}
	for person, form := range present {
		if form == "" {
			report(word, "verb missing present form for %s", person)
		}
	}
	if verb.Past.Singular == "" || verb.Past.Plural == "" {
		report(word, "verb missing past tense forms")
	}
	if verb.PastParticiple == "" {
		report(word, "verb missing past participle")
	}
	if verb.Separable && verb.Prefix == "" {
		report(word, "separable verb missing prefix")
	}
}

func validateAdjective(word entity.Word, report func(entity.Word, string, ...any)) {
	if word.Forms == nil || word.Forms.Adjective == nil {
		report(word, "adjective requires its form table")
		return
	}
	adj := word.Forms.Adjective
	if adj.Base == "" || adj.WithDe == "" || adj.WithHet == "" {
		report(word, "adjective missing base or inflected forms")
	}
	if adj.Comparative == "" || adj.Superlative == "" {
		report(word, "adjective missing comparative or superlative")
	}
}

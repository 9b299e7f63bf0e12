// Package sentence samples a lexicon into a pseudo-sentence that loosely
// follows a preferred category order.
package sentence

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/papapumpkin/lexis/internal/catalog"
	"github.com/papapumpkin/lexis/internal/lexicon"
)

// Length bounds, inclusive.
const (
	MinLength = 3
	MaxLength = 7
)

// PreferenceProbability is the chance a position tries the next preferred
// category before falling back to any word.
const PreferenceProbability = 0.7

// Preference is the category order sentences lean towards.
var Preference = []catalog.Category{
	catalog.Being,
	catalog.Quality,
	catalog.Action,
	catalog.Natural,
	catalog.Relation,
	catalog.Abstract,
}

// Word is one position of a sentence.
type Word struct {
	Word     string `json:"word"`
	Meaning  string `json:"meaning"`
	Category string `json:"category"`
}

// Sentence is a generated sentence with its gloss.
type Sentence struct {
	Text  string `json:"text"`
	Gloss string `json:"gloss"`
	Words []Word `json:"words"`
}

// Empty is the sentence generated from a lexicon without living words.
// Generate returns a copy with its own Words slice.
var Empty = Sentence{Text: "", Gloss: "", Words: []Word{}}

// Generate builds a sentence of MinLength..MaxLength words from s. Each
// position pops the next preferred category with probability
// PreferenceProbability and uses one of its words; a category with no living
// words, an exhausted queue or the complementary draw picks any word. s is
// only read.
func Generate(rng *rand.Rand, s *lexicon.State) Sentence {
	forms := s.SortedForms()
	if len(forms) == 0 {
		empty := Empty
		empty.Words = []Word{}
		return empty
	}

	byCat := make(map[string][]string)
	for _, form := range forms {
		cat := s.Words[form].Category
		byCat[cat] = append(byCat[cat], form)
	}

	length := MinLength + rng.IntN(MaxLength-MinLength+1)
	queue := slices.Clone(Preference)
	words := make([]Word, 0, length)
	for range length {
		form, ok := "", false
		if rng.Float64() < PreferenceProbability && len(queue) > 0 {
			cat := queue[0]
			queue = queue[1:]
			if cands := byCat[string(cat)]; len(cands) > 0 {
				form, ok = cands[rng.IntN(len(cands))], true
			}
		}
		if !ok {
			form = forms[rng.IntN(len(forms))]
		}
		w := s.Words[form]
		words = append(words, Word{Word: form, Meaning: w.Meaning, Category: w.Category})
	}

	text := make([]string, len(words))
	gloss := make([]string, len(words))
	for i, w := range words {
		text[i] = w.Word
		gloss[i] = w.Meaning
	}
	return Sentence{
		Text:  strings.Join(text, " "),
		Gloss: strings.Join(gloss, " "),
		Words: words,
	}
}

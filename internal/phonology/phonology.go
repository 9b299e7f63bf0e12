// Package phonology generates syllables and words from weighted consonant and
// vowel inventories, and applies sound-shift substitutions to existing forms.
//
// A Generator never fails: every draw is taken from the injected random source
// and always yields a well-formed string.
package phonology

import (
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

// Probabilities governing syllable shape.
const (
	OnsetProbability = 0.8
	CodaProbability  = 0.3
	ShiftProbability = 0.15
)

var (
	consonants       = []string{"k", "t", "n", "m", "s", "p", "l", "r", "h", "w", "j", "g"}
	consonantWeights = []float64{12, 15, 10, 8, 12, 8, 6, 5, 7, 4, 3, 2}

	vowels       = []string{"a", "i", "u", "e", "o"}
	vowelWeights = []float64{20, 15, 10, 12, 8}

	// An empty coda is listed alongside the nasals, so a coda that "fires"
	// still yields nothing one time in three.
	codas = []string{"n", "m", ""}

	syllableCounts  = []int{1, 2, 3}
	syllableWeights = []float64{15, 50, 35}
)

// shiftTable maps a phone to the phones it may shift into. An empty
// alternative deletes the phone.
var shiftTable = map[byte][]string{
	'p': {"b", "f"},
	't': {"d", "s"},
	'k': {"g", "h"},
	's': {"h", ""},
	'g': {"k"},
	'h': {""},
	'r': {"l"},
	'w': {"v", "u"},
}

// Generator draws phonological material from a random source. It is not safe
// for concurrent use; the engine serializes access to it.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator drawing from rng.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Syllable produces onset? + nucleus + coda?.
func (g *Generator) Syllable() string {
	var b strings.Builder
	if g.rng.Float64() < OnsetProbability {
		b.WriteString(WeightedChoice(g.rng, consonants, consonantWeights))
	}
	b.WriteString(WeightedChoice(g.rng, vowels, vowelWeights))
	if g.rng.Float64() < CodaProbability {
		b.WriteString(codas[g.rng.IntN(len(codas))])
	}
	return b.String()
}

// Word concatenates one to three syllables.
func (g *Generator) Word() string {
	n := WeightedChoice(g.rng, syllableCounts, syllableWeights)
	var b strings.Builder
	for range n {
		b.WriteString(g.Syllable())
	}
	return b.String()
}

// Shift runs form through the sound-shift table. Each eligible character is
// replaced independently with probability ShiftProbability. The returned bool
// reports whether at least one substitution fired; the result may still equal
// form when a phone shifted into itself.
func (g *Generator) Shift(form string) (string, bool) {
	var b strings.Builder
	fired := false
	for _, r := range form {
		if r < utf8.RuneSelf {
			alts, ok := shiftTable[byte(r)]
			if ok && g.rng.Float64() < ShiftProbability {
				b.WriteString(alts[g.rng.IntN(len(alts))])
				fired = true
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String(), fired
}

// WeightedChoice draws a value uniformly in [0, sum(weights)) and returns the
// first item whose cumulative weight meets or exceeds it. The last item is
// returned if floating point rounding overshoots. items and weights must be
// the same non-zero length.
func WeightedChoice[T any](rng *rand.Rand, items []T, weights []float64) T {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r <= cum {
			return items[i]
		}
	}
	return items[len(items)-1]
}

// Shiftable reports whether c has entries in the sound-shift table.
func Shiftable(c byte) bool {
	_, ok := shiftTable[c]
	return ok
}

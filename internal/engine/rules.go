package engine

import (
	"strings"

	"github.com/papapumpkin/lexis/internal/lexicon"
)

// birth names a concept with a new word. Uncovered concepts are preferred;
// once every concept has a living word any concept may be named again.
func (e *Engine) birth(gen int) lexicon.Event {
	if e.rng.Float64() >= BirthProbability {
		return nil
	}
	concept := e.pickConcept()
	form, ok := e.uniqueForm()
	if !ok {
		return nil
	}
	w := e.insertWord(form, concept, gen)
	return &lexicon.Birth{Gen: gen, Word: form, Meaning: w.Meaning}
}

func (e *Engine) pickConcept() string {
	covered := make(map[string]bool, len(e.state.Words))
	for _, w := range e.state.Words {
		covered[w.Meaning] = true
	}
	all := e.catalog.Concepts()
	var uncovered []string
	for _, c := range all {
		if !covered[c] {
			uncovered = append(uncovered, c)
		}
	}
	if len(uncovered) > 0 {
		return uncovered[e.rng.IntN(len(uncovered))]
	}
	return all[e.rng.IntN(len(all))]
}

// uniqueForm draws words until one is unused by any word or compound, giving
// up after maxAttempts draws.
func (e *Engine) uniqueForm() (string, bool) {
	for range e.maxAttempts {
		form := e.phon.Word()
		if form != "" && !e.state.InUse(form) {
			return form, true
		}
	}
	return "", false
}

func (e *Engine) insertWord(form, concept string, gen int) *lexicon.Word {
	cat, _ := e.catalog.CategoryOf(concept)
	w := &lexicon.Word{
		Meaning:  concept,
		Category: string(cat),
		Born:     gen,
		Fitness:  BirthFitness,
		History:  []string{form},
	}
	e.state.Words[form] = w
	e.state.Stats.TotalGenerated++
	return w
}

// use exercises a random third of the lexicon, at least one word.
func (e *Engine) use() {
	forms := e.state.SortedForms()
	if len(forms) == 0 {
		return
	}
	e.rng.Shuffle(len(forms), func(i, j int) { forms[i], forms[j] = forms[j], forms[i] })
	n := max(1, len(forms)/3)
	for _, form := range forms[:n] {
		w := e.state.Words[form]
		w.Uses++
		w.Fitness = min(lexicon.MaxFitness, w.Fitness+UseBonus)
	}
}

// decay ages every word born before gen. Words never used past the grace
// period decay faster.
func (e *Engine) decay(gen int) {
	for _, w := range e.state.Words {
		age := gen - w.Born
		if age <= 0 {
			continue
		}
		w.Fitness -= AgeDecay
		if w.Uses == 0 && age > DisuseGracePeriod {
			w.Fitness -= DisuseDecay
		}
	}
}

// extinguish removes every word whose fitness has reached zero.
func (e *Engine) extinguish(gen int) []lexicon.Event {
	var events []lexicon.Event
	for _, form := range e.state.SortedForms() {
		w := e.state.Words[form]
		if w.Fitness > 0 {
			continue
		}
		delete(e.state.Words, form)
		e.state.AppendExtinct(lexicon.ExtinctRecord{
			Word:    form,
			Meaning: w.Meaning,
			Born:    w.Born,
			Died:    gen,
			Uses:    w.Uses,
		})
		e.state.Stats.TotalExtinct++
		events = append(events, &lexicon.Extinction{Gen: gen, Word: form, Meaning: w.Meaning})
	}
	return events
}

// shift runs one random word through the sound-shift table. Collisions and
// unchanged forms leave the lexicon untouched.
func (e *Engine) shift(gen int) lexicon.Event {
	if e.rng.Float64() >= ShiftProbability || len(e.state.Words) == 0 {
		return nil
	}
	forms := e.state.SortedForms()
	from := forms[e.rng.IntN(len(forms))]
	to, fired := e.phon.Shift(from)
	if !fired || to == "" || !e.state.Rename(from, to) {
		return nil
	}
	meaning := e.state.Words[to].Meaning
	e.state.AppendShift(lexicon.ShiftRecord{Gen: gen, From: from, To: to, Meaning: meaning})
	e.state.Stats.TotalShifts++
	return &lexicon.Shift{Gen: gen, From: from, To: to, Meaning: meaning}
}

// compound joins the head of one random word to the tail of another.
func (e *Engine) compound(gen int) lexicon.Event {
	if e.rng.Float64() >= CompoundProbability || len(e.state.Words) < MinCompoundWords {
		return nil
	}
	forms := e.state.SortedForms()
	a := forms[e.rng.IntN(len(forms))]
	b := forms[e.rng.IntN(len(forms))]
	if a == b {
		return nil
	}
	form := CompoundForm(a, b)
	if e.state.InUse(form) {
		return nil
	}
	wa, wb := e.state.Words[a], e.state.Words[b]
	meaning := wa.Meaning + "-" + wb.Meaning
	e.state.Compounds[form] = &lexicon.Compound{
		Parts:           []string{a, b},
		Meanings:        []string{wa.Meaning, wb.Meaning},
		CompoundMeaning: meaning,
		Born:            gen,
	}
	e.state.Stats.TotalCompounds++
	return &lexicon.Compounding{Gen: gen, Word: form, Meaning: meaning, Parts: []string{a, b}}
}

// CompoundForm concatenates the first half of a, at least two characters,
// with the second half of b. Halves are counted in runes.
func CompoundForm(a, b string) string {
	ra, rb := []rune(a), []rune(b)
	head := min(len(ra), max(2, (len(ra)+1)/2))
	var sb strings.Builder
	sb.WriteString(string(ra[:head]))
	sb.WriteString(string(rb[len(rb)/2:]))
	return sb.String()
}

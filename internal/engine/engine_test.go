package engine

import (
	"fmt"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/lexis/internal/catalog"
	"github.com/papapumpkin/lexis/internal/lexicon"
)

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func newTestEngine(t *testing.T, seed uint64, state *lexicon.State, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithSeed(seed), WithClock(fixedClock)}, opts...)
	return New(state, opts...)
}

func word(meaning string, born int, uses int, fitness float64, form string) *lexicon.Word {
	return &lexicon.Word{Meaning: meaning, Category: "natural", Born: born, Uses: uses, Fitness: fitness, History: []string{form}}
}

func TestNewSeeded(t *testing.T) {
	t.Parallel()
	e := NewSeeded(WithSeed(1))
	s := e.Snapshot()

	if len(s.Words) != SeedConcepts {
		t.Fatalf("seeded %d words, want %d", len(s.Words), SeedConcepts)
	}
	meanings := map[string]bool{}
	for form, w := range s.Words {
		if meanings[w.Meaning] {
			t.Errorf("concept %q seeded twice", w.Meaning)
		}
		meanings[w.Meaning] = true
		if w.Born != 0 || w.Uses != 0 || w.Fitness != BirthFitness {
			t.Errorf("seed word %q = %+v, want born 0, uses 0, fitness %.1f", form, w, BirthFitness)
		}
		if _, ok := e.Catalog().CategoryOf(w.Meaning); !ok {
			t.Errorf("seed concept %q not in catalog", w.Meaning)
		}
	}
	if s.Generation != 0 {
		t.Errorf("Generation = %d, want 0", s.Generation)
	}
	if s.Stats.TotalGenerated != SeedConcepts {
		t.Errorf("TotalGenerated = %d, want %d", s.Stats.TotalGenerated, SeedConcepts)
	}
}

func TestNewSeeded_SmallCatalog(t *testing.T) {
	t.Parallel()
	cat, err := catalog.New(map[catalog.Category][]string{catalog.Natural: {"ice", "snow", "fog"}})
	if err != nil {
		t.Fatal(err)
	}
	e := NewSeeded(WithSeed(2), WithCatalog(cat))
	if n := len(e.Snapshot().Words); n != 3 {
		t.Errorf("seeded %d words from a 3-concept catalog, want 3", n)
	}
}

func TestAdvance_Deterministic(t *testing.T) {
	t.Parallel()
	run := func() (*lexicon.State, []Result) {
		e := NewSeeded(WithSeed(99), WithClock(fixedClock))
		var results []Result
		for range 300 {
			results = append(results, e.Advance())
		}
		return e.Snapshot(), results
	}

	s1, r1 := run()
	s2, r2 := run()
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Fatalf("states diverged with identical seeds (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Fatalf("events diverged with identical seeds (-first +second):\n%s", diff)
	}
}

func TestAdvance_Invariants(t *testing.T) {
	t.Parallel()
	e := NewSeeded(WithSeed(7), WithClock(fixedClock))

	prev := e.Snapshot()
	histories := map[string][]string{}
	for gen := 1; gen <= 1500; gen++ {
		res := e.Advance()
		s := e.Snapshot()

		if res.Generation != gen || s.Generation != gen {
			t.Fatalf("generation = %d/%d, want %d", res.Generation, s.Generation, gen)
		}
		if res.WordCount != len(s.Words) {
			t.Fatalf("WordCount = %d, want %d", res.WordCount, len(s.Words))
		}
		for _, ev := range res.Events {
			if ev.Event.Generation() != gen {
				t.Fatalf("event %s carries gen %d, want %d", ev.Event.Kind(), ev.Event.Generation(), gen)
			}
			if !ev.At.Equal(fixedTime) {
				t.Fatalf("event not stamped with clock time")
			}
		}

		for form := range s.Words {
			if _, ok := s.Compounds[form]; ok {
				t.Fatalf("gen %d: %q is both a word and a compound", gen, form)
			}
		}
		for form, w := range s.Words {
			if w.Fitness <= 0 {
				t.Fatalf("gen %d: %q alive with fitness %v", gen, form, w.Fitness)
			}
			if w.Fitness > lexicon.MaxFitness {
				t.Fatalf("gen %d: %q fitness %v above cap", gen, form, w.Fitness)
			}
			if w.History[len(w.History)-1] != form {
				t.Fatalf("gen %d: history of %q does not end with its form: %v", gen, form, w.History)
			}
		}

		if len(s.Extinct) > lexicon.MaxExtinct || len(s.SoundShifts) > lexicon.MaxShifts || len(s.Events) > lexicon.MaxEvents {
			t.Fatalf("gen %d: ring overflow extinct=%d shifts=%d events=%d", gen, len(s.Extinct), len(s.SoundShifts), len(s.Events))
		}

		ps, cs := prev.Stats, s.Stats
		if cs.TotalGenerated < ps.TotalGenerated || cs.TotalExtinct < ps.TotalExtinct ||
			cs.TotalCompounds < ps.TotalCompounds || cs.TotalShifts < ps.TotalShifts {
			t.Fatalf("gen %d: counters decreased: %+v -> %+v", gen, ps, cs)
		}

		// A word is identified by its first form and birth generation; the
		// entries of its history never change once written.
		next := map[string][]string{}
		for form, w := range s.Words {
			origin := fmt.Sprintf("%s/%d", w.History[0], w.Born)
			if old, ok := histories[origin]; ok {
				if len(w.History) < len(old) {
					t.Fatalf("gen %d: history of %q shrank", gen, form)
				}
				if diff := cmp.Diff(old, w.History[:len(old)]); diff != "" {
					t.Fatalf("gen %d: history of %q rewritten:\n%s", gen, form, diff)
				}
			}
			next[origin] = append([]string(nil), w.History...)
		}
		histories = next
		prev = s
	}

	s := e.Snapshot()
	if s.Stats.TotalExtinct == 0 || s.Stats.TotalShifts == 0 || s.Stats.TotalCompounds == 0 {
		t.Errorf("1500 generations exercised too little: %+v", s.Stats)
	}
	if len(s.Events) != lexicon.MaxEvents {
		t.Errorf("len(Events) = %d, want full ring of %d", len(s.Events), lexicon.MaxEvents)
	}
}

func TestAdvance_EmptyLexicon(t *testing.T) {
	t.Parallel()

	births := 0
	for seed := range uint64(100) {
		e := newTestEngine(t, seed, nil)
		res := e.Advance()
		if res.Generation != 1 {
			t.Fatalf("seed %d: Generation = %d, want 1", seed, res.Generation)
		}
		if res.WordCount > 1 {
			t.Fatalf("seed %d: WordCount = %d after one generation from empty", seed, res.WordCount)
		}
		for _, ev := range res.Events {
			switch ev.Event.Kind() {
			case lexicon.KindBirth:
				births++
			case lexicon.KindExtinct, lexicon.KindCompound:
				t.Fatalf("seed %d: unexpected %s event from an empty lexicon", seed, ev.Event.Kind())
			}
		}
	}
	if births == 0 {
		t.Error("no births from an empty lexicon across 100 seeds")
	}
}

func TestAdvance_BirthWhenAllConceptsCovered(t *testing.T) {
	t.Parallel()
	cat, err := catalog.New(map[catalog.Category][]string{catalog.Natural: {"ice", "snow"}})
	if err != nil {
		t.Fatal(err)
	}
	s := lexicon.NewState()
	s.Words["ka"] = word("ice", 0, 10, 2.0, "ka")
	s.Words["lu"] = word("snow", 0, 10, 2.0, "lu")
	e := newTestEngine(t, 4, s, WithCatalog(cat))

	births := 0
	for range 50 {
		for _, ev := range e.Advance().Events {
			if b, ok := ev.Event.(*lexicon.Birth); ok {
				births++
				if b.Meaning != "ice" && b.Meaning != "snow" {
					t.Fatalf("birth named %q, not a catalog concept", b.Meaning)
				}
			}
		}
	}
	if births == 0 {
		t.Error("no births across 50 generations with every concept covered")
	}
}

func TestCompound_NeedsFourWords(t *testing.T) {
	t.Parallel()

	threeWords := func() *lexicon.State {
		s := lexicon.NewState()
		s.Words["ka"] = word("ice", 0, 0, 2.0, "ka")
		s.Words["lumo"] = word("snow", 0, 0, 2.0, "lumo")
		s.Words["teni"] = word("fog", 0, 0, 2.0, "teni")
		return s
	}

	for seed := range uint64(500) {
		e := newTestEngine(t, seed, threeWords())
		for gen := 1; gen <= 20; gen++ {
			if ev := e.compound(gen); ev != nil {
				t.Fatalf("seed %d: compound %+v formed from three words", seed, ev)
			}
		}
		if n := len(e.Snapshot().Compounds); n != 0 {
			t.Fatalf("seed %d: %d compounds stored", seed, n)
		}
	}

	s := threeWords()
	s.Words["sepa"] = word("rain", 0, 0, 2.0, "sepa")
	e := newTestEngine(t, 1, s)
	formed := 0
	for gen := 1; gen <= 200; gen++ {
		if ev := e.compound(gen); ev != nil {
			formed++
			c := ev.(*lexicon.Compounding)
			if _, ok := e.state.Compounds[c.Word]; !ok {
				t.Fatalf("compound event for %q without stored compound", c.Word)
			}
			if _, ok := e.state.Words[c.Word]; ok {
				t.Fatalf("compound %q shadows a living word", c.Word)
			}
		}
	}
	if formed == 0 {
		t.Error("no compound formed from four words in 200 attempts")
	}
	if e.state.Stats.TotalCompounds != formed {
		t.Errorf("TotalCompounds = %d, want %d", e.state.Stats.TotalCompounds, formed)
	}
}

func TestAdvance_NoCompoundEventsBelowFourWords(t *testing.T) {
	t.Parallel()
	cat, err := catalog.New(map[catalog.Category][]string{catalog.Natural: {"ice", "snow"}})
	if err != nil {
		t.Fatal(err)
	}

	for seed := range uint64(300) {
		s := lexicon.NewState()
		s.Words["ka"] = word("ice", 0, 0, 2.0, "ka")
		s.Words["lumo"] = word("snow", 0, 0, 2.0, "lumo")
		e := newTestEngine(t, seed, s, WithCatalog(cat))
		// Two words plus at most one birth stays below the threshold.
		for _, ev := range e.Advance().Events {
			if ev.Event.Kind() == lexicon.KindCompound {
				t.Fatalf("seed %d: compound event with fewer than four words", seed)
			}
		}
	}
}

func TestCompoundForm(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want string
	}{
		{"kata", "lumo", "kamo"},
		{"kat", "lumo", "kamo"},
		{"ka", "lumo", "kamo"},
		{"a", "lumo", "amo"},
		{"tenisa", "ro", "teno"},
		{"kanemu", "o", "kano"},
		{"kata", "ña", "kaa"},
		{"ñato", "luña", "ñaña"},
		{"ñ", "ño", "ño"},
	}
	for _, tt := range tests {
		got := CompoundForm(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("CompoundForm(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("CompoundForm(%q, %q) = %q, not valid UTF-8", tt.a, tt.b, got)
		}
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()
	e := NewSeeded(WithSeed(5))

	e.Replace(func(cur *lexicon.State) *lexicon.State {
		cur.Words = nil
		cur.Generation = 42
		return cur
	})
	s := e.Snapshot()
	if s.Generation != 42 {
		t.Errorf("Generation = %d, want 42", s.Generation)
	}
	if s.Words == nil || len(s.Words) != 0 {
		t.Errorf("Words = %v, want normalized empty map", s.Words)
	}

	e.Replace(func(*lexicon.State) *lexicon.State { return nil })
	if e.Generation() != 42 {
		t.Error("nil replacement changed the state")
	}
}

func TestSnapshot_IsolatedFromEngine(t *testing.T) {
	t.Parallel()
	e := NewSeeded(WithSeed(6))
	s := e.Snapshot()
	for form := range s.Words {
		delete(s.Words, form)
	}
	if len(e.Snapshot().Words) == 0 {
		t.Error("mutating a snapshot changed engine state")
	}
}

func TestSentence_UsesLivingWords(t *testing.T) {
	t.Parallel()
	e := NewSeeded(WithSeed(8))
	s := e.Snapshot()
	got := e.Sentence()
	if len(got.Words) == 0 {
		t.Fatal("sentence from a seeded lexicon is empty")
	}
	for _, w := range got.Words {
		if _, ok := s.Words[w.Word]; !ok {
			t.Errorf("sentence word %q is not living", w.Word)
		}
	}
}

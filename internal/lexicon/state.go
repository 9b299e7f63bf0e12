// Package lexicon defines the lexicon population the evolution engine
// mutates: living words, compounds, the bounded extinction, sound-shift and
// event histories, and the cumulative counters.
//
// A State is plain data. Ownership and serialization of access belong to the
// engine; everything here assumes a single caller at a time.
package lexicon

import (
	"maps"
	"slices"
)

// Ring capacities for the bounded histories.
const (
	MaxExtinct = 50
	MaxShifts  = 30
	MaxEvents  = 200
)

// Limits applied by History.
const (
	HistoryEvents  = 100
	HistoryExtinct = 20
	HistoryShifts  = 20
)

// MaxFitness caps a word's fitness.
const MaxFitness = 2.0

// Word is a living lexical item keyed by its surface form.
type Word struct {
	Meaning  string   `json:"meaning"`
	Category string   `json:"category"`
	Born     int      `json:"born"`
	Uses     int      `json:"uses"`
	Fitness  float64  `json:"fitness"`
	History  []string `json:"history"`
}

// Compound is a word formed from fragments of two others. Compounds are
// never modified once created.
type Compound struct {
	Parts           []string `json:"parts"`
	Meanings        []string `json:"meanings"`
	CompoundMeaning string   `json:"compound_meaning"`
	Born            int      `json:"born"`
}

// ExtinctRecord is a snapshot of a word at death.
type ExtinctRecord struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Born    int    `json:"born"`
	Died    int    `json:"died"`
	Uses    int    `json:"uses"`
}

// ShiftRecord records one sound shift.
type ShiftRecord struct {
	Gen     int    `json:"gen"`
	From    string `json:"from"`
	To      string `json:"to"`
	Meaning string `json:"meaning"`
}

// Stats holds cumulative counters. They never decrease.
type Stats struct {
	TotalGenerated int `json:"total_generated"`
	TotalExtinct   int `json:"total_extinct"`
	TotalCompounds int `json:"total_compounds"`
	TotalShifts    int `json:"total_shifts"`
}

// State is the whole lexicon population. The JSON form is the snapshot shape
// exchanged with peers and persisted by the store.
type State struct {
	Words       map[string]*Word     `json:"words"`
	Compounds   map[string]*Compound `json:"compounds"`
	Generation  int                  `json:"generation"`
	Extinct     []ExtinctRecord      `json:"extinct"`
	SoundShifts []ShiftRecord        `json:"sound_shifts"`
	Events      []LoggedEvent        `json:"events"`
	Stats       Stats                `json:"stats"`
}

// NewState returns an empty, normalized state at generation 0.
func NewState() *State {
	s := &State{}
	s.Normalize()
	return s
}

// Normalize repairs a partially populated state: absent collections become
// empty, nil entries are dropped, words without history get their own form as
// history, and the rings are trimmed to capacity. It is called wherever a
// state crosses a trust boundary (load, merge).
func (s *State) Normalize() {
	if s.Words == nil {
		s.Words = make(map[string]*Word)
	}
	if s.Compounds == nil {
		s.Compounds = make(map[string]*Compound)
	}
	if s.Extinct == nil {
		s.Extinct = []ExtinctRecord{}
	}
	if s.SoundShifts == nil {
		s.SoundShifts = []ShiftRecord{}
	}
	if s.Events == nil {
		s.Events = []LoggedEvent{}
	}
	for form, w := range s.Words {
		if w == nil {
			delete(s.Words, form)
			continue
		}
		if len(w.History) == 0 {
			w.History = []string{form}
		}
	}
	for form, c := range s.Compounds {
		if c == nil {
			delete(s.Compounds, form)
		}
	}
	// A form present in both maps stays a living word.
	for form := range s.Compounds {
		if _, ok := s.Words[form]; ok {
			delete(s.Compounds, form)
		}
	}
	s.Events = slices.DeleteFunc(s.Events, func(e LoggedEvent) bool { return e.Event == nil })
	s.Extinct = keepLast(s.Extinct, MaxExtinct)
	s.SoundShifts = keepLast(s.SoundShifts, MaxShifts)
	s.Events = keepLast(s.Events, MaxEvents)
}

// InUse reports whether form is a living word or a compound.
func (s *State) InUse(form string) bool {
	if _, ok := s.Words[form]; ok {
		return true
	}
	_, ok := s.Compounds[form]
	return ok
}

// SortedForms returns the living surface forms in lexical order. Every random
// selection over words goes through this so a seeded run is reproducible.
func (s *State) SortedForms() []string {
	return slices.Sorted(maps.Keys(s.Words))
}

// AppendExtinct appends r, dropping the oldest record past MaxExtinct.
func (s *State) AppendExtinct(r ExtinctRecord) {
	s.Extinct = keepLast(append(s.Extinct, r), MaxExtinct)
}

// AppendShift appends r, dropping the oldest record past MaxShifts.
func (s *State) AppendShift(r ShiftRecord) {
	s.SoundShifts = keepLast(append(s.SoundShifts, r), MaxShifts)
}

// AppendEvents appends evts, dropping the oldest past MaxEvents.
func (s *State) AppendEvents(evts ...LoggedEvent) {
	s.Events = keepLast(append(s.Events, evts...), MaxEvents)
}

// Rename moves the word at from to the key to, appending to its history.
// It returns false, leaving the state unchanged, when from is not a living
// word or to is already in use.
func (s *State) Rename(from, to string) bool {
	w, ok := s.Words[from]
	if !ok || from == to || s.InUse(to) {
		return false
	}
	delete(s.Words, from)
	w.History = append(w.History, to)
	s.Words[to] = w
	return true
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	out := &State{
		Words:       make(map[string]*Word, len(s.Words)),
		Compounds:   make(map[string]*Compound, len(s.Compounds)),
		Generation:  s.Generation,
		Extinct:     slices.Clone(s.Extinct),
		SoundShifts: slices.Clone(s.SoundShifts),
		Events:      slices.Clone(s.Events),
		Stats:       s.Stats,
	}
	for form, w := range s.Words {
		cp := *w
		cp.History = slices.Clone(w.History)
		out.Words[form] = &cp
	}
	for form, c := range s.Compounds {
		cp := *c
		cp.Parts = slices.Clone(c.Parts)
		cp.Meanings = slices.Clone(c.Meanings)
		out.Compounds[form] = &cp
	}
	if out.Extinct == nil {
		out.Extinct = []ExtinctRecord{}
	}
	if out.SoundShifts == nil {
		out.SoundShifts = []ShiftRecord{}
	}
	if out.Events == nil {
		out.Events = []LoggedEvent{}
	}
	return out
}

// History is the recent-history view served to clients.
type History struct {
	Events      []LoggedEvent        `json:"events"`
	Extinct     []ExtinctRecord      `json:"extinct"`
	SoundShifts []ShiftRecord        `json:"sound_shifts"`
	Compounds   map[string]*Compound `json:"compounds"`
}

// History returns the most recent events, extinct and shift records, and all
// compounds. The returned slices are copies.
func (s *State) History() History {
	h := History{
		Events:      slices.Clone(keepLast(s.Events, HistoryEvents)),
		Extinct:     slices.Clone(keepLast(s.Extinct, HistoryExtinct)),
		SoundShifts: slices.Clone(keepLast(s.SoundShifts, HistoryShifts)),
		Compounds:   make(map[string]*Compound, len(s.Compounds)),
	}
	for form, c := range s.Compounds {
		cp := *c
		h.Compounds[form] = &cp
	}
	return h
}

// keepLast returns the trailing n elements of xs.
func keepLast[T any](xs []T, n int) []T {
	if len(xs) <= n {
		return xs
	}
	return slices.Clone(xs[len(xs)-n:])
}

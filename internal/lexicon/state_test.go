package lexicon

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize_PartialSnapshot(t *testing.T) {
	t.Parallel()

	// A snapshot with only words and a nil entry, as a peer might send.
	data := `{"words": {"kata": {"meaning": "water", "category": "natural", "fitness": 0.5}, "ghost": null}}`
	var s State
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	s.Normalize()

	if s.Compounds == nil || s.Extinct == nil || s.SoundShifts == nil || s.Events == nil {
		t.Fatal("Normalize left a collection nil")
	}
	if _, ok := s.Words["ghost"]; ok {
		t.Error("nil word entry survived Normalize")
	}
	w := s.Words["kata"]
	if w == nil {
		t.Fatal("word kata missing")
	}
	if diff := cmp.Diff([]string{"kata"}, w.History); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if s.Stats != (Stats{}) {
		t.Errorf("Stats = %+v, want zero", s.Stats)
	}
}

func TestNormalize_TrimsRingsAndOverlap(t *testing.T) {
	t.Parallel()
	s := &State{
		Words:     map[string]*Word{"ta": {Meaning: "fire"}},
		Compounds: map[string]*Compound{"ta": {CompoundMeaning: "x-y"}, "moku": {CompoundMeaning: "a-b"}},
	}
	for i := range MaxExtinct + 7 {
		s.Extinct = append(s.Extinct, ExtinctRecord{Word: "w", Died: i})
	}
	for i := range MaxShifts + 3 {
		s.SoundShifts = append(s.SoundShifts, ShiftRecord{Gen: i})
	}
	for i := range MaxEvents + 11 {
		s.Events = append(s.Events, LoggedEvent{Event: &Birth{Gen: i}})
	}
	s.Normalize()

	if len(s.Extinct) != MaxExtinct || s.Extinct[len(s.Extinct)-1].Died != MaxExtinct+6 {
		t.Errorf("extinct ring not trimmed to most recent %d", MaxExtinct)
	}
	if len(s.SoundShifts) != MaxShifts {
		t.Errorf("len(SoundShifts) = %d, want %d", len(s.SoundShifts), MaxShifts)
	}
	if len(s.Events) != MaxEvents || s.Events[0].Event.Generation() != 11 {
		t.Errorf("events ring not trimmed to most recent %d", MaxEvents)
	}
	if _, ok := s.Compounds["ta"]; ok {
		t.Error("form present as both word and compound survived Normalize")
	}
	if _, ok := s.Compounds["moku"]; !ok {
		t.Error("unrelated compound dropped")
	}
}

func TestAppendRings(t *testing.T) {
	t.Parallel()
	s := NewState()
	for i := range 500 {
		s.AppendExtinct(ExtinctRecord{Died: i})
		s.AppendShift(ShiftRecord{Gen: i})
		s.AppendEvents(LoggedEvent{Event: &Extinction{Gen: i}})
	}
	if len(s.Extinct) != MaxExtinct || s.Extinct[MaxExtinct-1].Died != 499 {
		t.Errorf("extinct ring: len=%d last=%d", len(s.Extinct), s.Extinct[len(s.Extinct)-1].Died)
	}
	if len(s.SoundShifts) != MaxShifts || s.SoundShifts[0].Gen != 500-MaxShifts {
		t.Errorf("shift ring: len=%d first=%d", len(s.SoundShifts), s.SoundShifts[0].Gen)
	}
	if len(s.Events) != MaxEvents {
		t.Errorf("len(Events) = %d, want %d", len(s.Events), MaxEvents)
	}
}

func TestRename(t *testing.T) {
	t.Parallel()

	newState := func() *State {
		s := NewState()
		s.Words["pata"] = &Word{Meaning: "stone", Born: 2, Uses: 4, Fitness: 0.7, History: []string{"pata"}}
		s.Words["luna"] = &Word{Meaning: "moon", History: []string{"luna"}}
		s.Compounds["pana"] = &Compound{CompoundMeaning: "stone-moon"}
		return s
	}

	tests := []struct {
		name     string
		from, to string
		want     bool
	}{
		{"fresh form", "pata", "bata", true},
		{"collides with word", "pata", "luna", false},
		{"collides with compound", "pata", "pana", false},
		{"missing source", "nope", "bata", false},
		{"identical", "pata", "pata", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newState()
			before := s.Clone()
			if got := s.Rename(tt.from, tt.to); got != tt.want {
				t.Fatalf("Rename(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
			if !tt.want {
				if diff := cmp.Diff(before, s); diff != "" {
					t.Errorf("failed rename mutated state (-before +after):\n%s", diff)
				}
				return
			}
			if _, ok := s.Words[tt.from]; ok {
				t.Error("old key still present")
			}
			w := s.Words[tt.to]
			want := &Word{Meaning: "stone", Born: 2, Uses: 4, Fitness: 0.7, History: []string{"pata", "bata"}}
			if diff := cmp.Diff(want, w); diff != "" {
				t.Errorf("renamed word mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()
	s := NewState()
	s.Words["ko"] = &Word{Meaning: "dog", History: []string{"ko"}}
	s.Compounds["koma"] = &Compound{Parts: []string{"ko", "ma"}}

	c := s.Clone()
	c.Words["ko"].History = append(c.Words["ko"].History, "go")
	c.Words["ko"].Fitness = 9
	c.Compounds["koma"].Parts[0] = "xx"

	if len(s.Words["ko"].History) != 1 || s.Words["ko"].Fitness != 0 {
		t.Error("clone shares word storage with original")
	}
	if s.Compounds["koma"].Parts[0] != "ko" {
		t.Error("clone shares compound storage with original")
	}
}

func TestHistory_Limits(t *testing.T) {
	t.Parallel()
	s := NewState()
	for i := range MaxEvents {
		s.AppendEvents(LoggedEvent{Event: &Birth{Gen: i}})
	}
	for i := range MaxExtinct {
		s.AppendExtinct(ExtinctRecord{Died: i})
	}
	for i := range MaxShifts {
		s.AppendShift(ShiftRecord{Gen: i})
	}
	s.Compounds["a"] = &Compound{}
	s.Compounds["b"] = &Compound{}

	h := s.History()
	if len(h.Events) != HistoryEvents || h.Events[HistoryEvents-1].Event.Generation() != MaxEvents-1 {
		t.Errorf("events: len=%d, want most recent %d", len(h.Events), HistoryEvents)
	}
	if len(h.Extinct) != HistoryExtinct || h.Extinct[0].Died != MaxExtinct-HistoryExtinct {
		t.Errorf("extinct: len=%d first=%d", len(h.Extinct), h.Extinct[0].Died)
	}
	if len(h.SoundShifts) != HistoryShifts {
		t.Errorf("len(SoundShifts) = %d, want %d", len(h.SoundShifts), HistoryShifts)
	}
	if len(h.Compounds) != 2 {
		t.Errorf("len(Compounds) = %d, want 2", len(h.Compounds))
	}
}

func TestLoggedEvent_JSON(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []LoggedEvent{
		{Event: &Birth{Gen: 1, Word: "ka", Meaning: "fire"}, At: at},
		{Event: &Extinction{Gen: 2, Word: "ka", Meaning: "fire"}, At: at},
		{Event: &Shift{Gen: 3, From: "pata", To: "bata", Meaning: "stone"}, At: at},
		{Event: &Compounding{Gen: 4, Word: "pana", Meaning: "stone-moon", Parts: []string{"pata", "luna"}}},
	}

	data, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{`"type":"birth"`, `"type":"extinct"`, `"from":"pata"`, `"parts":["pata","luna"]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("encoded events missing %s:\n%s", want, data)
		}
	}

	var got []LoggedEvent
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(events, got); diff != "" {
		t.Errorf("decoded events mismatch (-want +got):\n%s", diff)
	}
}

func TestLoggedEvent_UnknownType(t *testing.T) {
	t.Parallel()
	var l LoggedEvent
	err := json.Unmarshal([]byte(`{"type":"merger","gen":1}`), &l)
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("Unmarshal error = %v, want ErrUnknownEvent", err)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	tests := []struct {
		event Event
		want  string
	}{
		{&Birth{Word: "ka", Meaning: "fire"}, `ka born meaning "fire"`},
		{&Extinction{Word: "ka", Meaning: "fire"}, "ka (fire) went extinct"},
		{&Shift{From: "pata", To: "bata", Meaning: "stone"}, "pata shifted to bata (stone)"},
		{&Compounding{Word: "pana", Meaning: "stone-moon", Parts: []string{"pata", "luna"}}, `pana compounded from pata+luna meaning "stone-moon"`},
	}
	for _, tt := range tests {
		if got := Describe(tt.event); got != tt.want {
			t.Errorf("Describe(%T) = %q, want %q", tt.event, got, tt.want)
		}
	}
}

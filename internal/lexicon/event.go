package lexicon

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind identifies an event variant.
type Kind string

// Event kinds.
const (
	KindBirth    Kind = "birth"
	KindExtinct  Kind = "extinct"
	KindShift    Kind = "shift"
	KindCompound Kind = "compound"
)

// Kinds lists every event kind.
var Kinds = []Kind{KindBirth, KindExtinct, KindShift, KindCompound}

// ErrUnknownEvent is returned when decoding an event record of unknown type.
var ErrUnknownEvent = errors.New("unknown event type")

// Event is one of *Birth, *Extinction, *Shift or *Compounding. The set is
// closed: only this package can add variants.
type Event interface {
	Kind() Kind
	Generation() int
	isEvent()
}

// Birth records a new word.
type Birth struct {
	Gen     int
	Word    string
	Meaning string
}

// Extinction records a word's death.
type Extinction struct {
	Gen     int
	Word    string
	Meaning string
}

// Shift records a sound shift renaming a word.
type Shift struct {
	Gen     int
	From    string
	To      string
	Meaning string
}

// Compounding records a new compound.
type Compounding struct {
	Gen     int
	Word    string
	Meaning string
	Parts   []string
}

func (*Birth) Kind() Kind       { return KindBirth }
func (*Extinction) Kind() Kind  { return KindExtinct }
func (*Shift) Kind() Kind       { return KindShift }
func (*Compounding) Kind() Kind { return KindCompound }

func (e *Birth) Generation() int       { return e.Gen }
func (e *Extinction) Generation() int  { return e.Gen }
func (e *Shift) Generation() int       { return e.Gen }
func (e *Compounding) Generation() int { return e.Gen }

func (*Birth) isEvent()       {}
func (*Extinction) isEvent()  {}
func (*Shift) isEvent()       {}
func (*Compounding) isEvent() {}

// LoggedEvent is an event stamped with the time it entered the log.
type LoggedEvent struct {
	Event Event
	At    time.Time
}

// record is the flat wire form of an event.
type record struct {
	Type      Kind       `json:"type"`
	Gen       int        `json:"gen"`
	Word      string     `json:"word,omitempty"`
	Meaning   string     `json:"meaning,omitempty"`
	From      string     `json:"from,omitempty"`
	To        string     `json:"to,omitempty"`
	Parts     []string   `json:"parts,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func toRecord(e Event) record {
	switch e := e.(type) {
	case *Birth:
		return record{Type: KindBirth, Gen: e.Gen, Word: e.Word, Meaning: e.Meaning}
	case *Extinction:
		return record{Type: KindExtinct, Gen: e.Gen, Word: e.Word, Meaning: e.Meaning}
	case *Shift:
		return record{Type: KindShift, Gen: e.Gen, From: e.From, To: e.To, Meaning: e.Meaning}
	case *Compounding:
		return record{Type: KindCompound, Gen: e.Gen, Word: e.Word, Meaning: e.Meaning, Parts: e.Parts}
	default:
		panic(fmt.Sprintf("lexicon: unhandled event %T", e))
	}
}

func (r record) event() (Event, error) {
	switch r.Type {
	case KindBirth:
		return &Birth{Gen: r.Gen, Word: r.Word, Meaning: r.Meaning}, nil
	case KindExtinct:
		return &Extinction{Gen: r.Gen, Word: r.Word, Meaning: r.Meaning}, nil
	case KindShift:
		return &Shift{Gen: r.Gen, From: r.From, To: r.To, Meaning: r.Meaning}, nil
	case KindCompound:
		return &Compounding{Gen: r.Gen, Word: r.Word, Meaning: r.Meaning, Parts: r.Parts}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEvent, r.Type)
	}
}

// MarshalJSON encodes the event as a flat record tagged by "type".
func (l LoggedEvent) MarshalJSON() ([]byte, error) {
	if l.Event == nil {
		return []byte("null"), nil
	}
	r := toRecord(l.Event)
	if !l.At.IsZero() {
		at := l.At
		r.Timestamp = &at
	}
	return json.Marshal(r)
}

// UnmarshalJSON decodes a flat record. A JSON null leaves the event nil.
func (l *LoggedEvent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = LoggedEvent{}
		return nil
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	e, err := r.event()
	if err != nil {
		return err
	}
	l.Event = e
	l.At = time.Time{}
	if r.Timestamp != nil {
		l.At = *r.Timestamp
	}
	return nil
}

// Describe renders an event as a short human-readable line.
func Describe(e Event) string {
	switch e := e.(type) {
	case *Birth:
		return fmt.Sprintf("%s born meaning %q", e.Word, e.Meaning)
	case *Extinction:
		return fmt.Sprintf("%s (%s) went extinct", e.Word, e.Meaning)
	case *Shift:
		return fmt.Sprintf("%s shifted to %s (%s)", e.From, e.To, e.Meaning)
	case *Compounding:
		return fmt.Sprintf("%s compounded from %s meaning %q", e.Word, joinParts(e.Parts), e.Meaning)
	default:
		return string(e.Kind())
	}
}

func joinParts(parts []string) string {
	switch len(parts) {
	case 0:
		return "?"
	case 1:
		return parts[0]
	default:
		return parts[0] + "+" + parts[1]
	}
}

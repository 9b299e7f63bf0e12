// Package telemetry writes a JSONL stream of lexicon activity: one line per
// lexicon event, one per completed generation and one per peer sync attempt.
// The stream is append-only and can be followed live with `lexis watch -f`.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/papapumpkin/lexis/internal/lexicon"
)

// Kinds that are not lexicon events. Lexicon events use their own kind
// ("birth", "extinct", "shift", "compound").
const (
	KindGeneration = "generation"
	KindSync       = "sync"
	KindSyncFailed = "sync_failed"
	KindStart      = "start"
)

// Event is a single telemetry record.
type Event struct {
	Timestamp  time.Time `json:"ts"`
	Kind       string    `json:"kind"`
	RunID      string    `json:"run,omitempty"`
	Generation int       `json:"gen,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Data       any       `json:"data,omitempty"`
}

// FromLogged converts a logged lexicon event into a telemetry record.
func FromLogged(runID string, ev lexicon.LoggedEvent) Event {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return Event{
		Timestamp:  ts,
		Kind:       string(ev.Event.Kind()),
		RunID:      runID,
		Generation: ev.Event.Generation(),
		Summary:    lexicon.Describe(ev.Event),
		Data:       ev,
	}
}

// Emitter appends events to a JSONL file. It is safe for concurrent use. A
// nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter opens path for appending, creating it if needed.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes events in order, stopping at the first failure.
func (e *Emitter) Emit(events ...Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, evt := range events {
		if err := e.enc.Encode(evt); err != nil {
			return fmt.Errorf("telemetry: encode %s event: %w", evt.Kind, err)
		}
	}
	return nil
}

// Close closes the underlying file.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}

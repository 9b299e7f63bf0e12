// Package node composes a running lexis instance: the evolution engine plus
// the collaborators that observe it (snapshot store, telemetry stream,
// metrics) and the optional peer it mirrors. HTTP handlers, the scheduler and
// the CLI all drive the lexicon through a Node.
package node

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/lexis/internal/engine"
	"github.com/papapumpkin/lexis/internal/lexicon"
	"github.com/papapumpkin/lexis/internal/metrics"
	"github.com/papapumpkin/lexis/internal/peer"
	"github.com/papapumpkin/lexis/internal/sentence"
	"github.com/papapumpkin/lexis/internal/telemetry"
)

// Store persists snapshots and archives events.
type Store interface {
	LoadState(ctx context.Context) (*lexicon.State, bool, error)
	SaveState(ctx context.Context, state *lexicon.State) error
	ArchiveEvents(ctx context.Context, events []lexicon.LoggedEvent) error
}

// Options configures the collaborators of a Node. Every field is optional.
type Options struct {
	Store   Store
	Emitter *telemetry.Emitter
	Metrics *metrics.Metrics
	Peer    *peer.Synchronizer
	Logger  *zap.Logger
	RunID   string
}

// Node is a lexicon engine with its observers attached.
type Node struct {
	// persistMu orders snapshot capture with the store write, so the stored
	// snapshot is always the newest one taken.
	persistMu sync.Mutex

	engine  *engine.Engine
	store   Store
	emitter *telemetry.Emitter
	metrics *metrics.Metrics
	peer    *peer.Synchronizer
	logger  *zap.Logger
	runID   string
}

// New returns a Node driving e.
func New(e *engine.Engine, opts Options) *Node {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Node{
		engine:  e,
		store:   opts.Store,
		emitter: opts.Emitter,
		metrics: opts.Metrics,
		peer:    opts.Peer,
		logger:  logger,
		runID:   opts.RunID,
	}
	n.metrics.Observe(e.Snapshot())
	return n
}

// Bootstrap builds an engine from the snapshot in st, or seeds a fresh
// lexicon and saves it when st is empty. The boolean reports whether a
// snapshot was restored.
func Bootstrap(ctx context.Context, st Store, opts ...engine.Option) (*engine.Engine, bool, error) {
	state, ok, err := st.LoadState(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("node: bootstrap: %w", err)
	}
	if ok {
		return engine.New(state, opts...), true, nil
	}
	e := engine.NewSeeded(opts...)
	if err := st.SaveState(ctx, e.Snapshot()); err != nil {
		return nil, false, fmt.Errorf("node: save seeded lexicon: %w", err)
	}
	return e, false, nil
}

// Engine returns the underlying engine.
func (n *Node) Engine() *engine.Engine {
	return n.engine
}

// Advance runs one generation and hands the result to every observer. The
// result is always valid; the error reports observers that failed to record
// it.
func (n *Node) Advance(ctx context.Context) (engine.Result, error) {
	res := n.engine.Advance()
	n.metrics.Advanced(res.Events)

	for _, ev := range res.Events {
		n.logger.Debug("lexicon event",
			zap.String("kind", string(ev.Event.Kind())),
			zap.Int("gen", ev.Event.Generation()),
			zap.String("summary", lexicon.Describe(ev.Event)))
	}
	n.logger.Info("generation advanced",
		zap.Int("generation", res.Generation),
		zap.Int("events", len(res.Events)),
		zap.Int("words", res.WordCount))

	var errs []error
	if err := n.emit(res); err != nil {
		errs = append(errs, err)
	}
	if err := n.persist(ctx, res.Events); err != nil {
		errs = append(errs, err)
	}
	err := errors.Join(errs...)
	if err != nil {
		n.logger.Error("recording generation failed", zap.Int("generation", res.Generation), zap.Error(err))
	}
	return res, err
}

// persist archives events and saves the current state. The snapshot is taken
// under persistMu so concurrent callers write in capture order.
func (n *Node) persist(ctx context.Context, events []lexicon.LoggedEvent) error {
	n.persistMu.Lock()
	defer n.persistMu.Unlock()

	snap := n.engine.Snapshot()
	n.metrics.Observe(snap)
	if n.store == nil {
		return nil
	}
	var errs []error
	if len(events) > 0 {
		if err := n.store.ArchiveEvents(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	if err := n.store.SaveState(ctx, snap); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (n *Node) emit(res engine.Result) error {
	if n.emitter == nil {
		return nil
	}
	events := make([]telemetry.Event, 0, len(res.Events)+1)
	for _, ev := range res.Events {
		events = append(events, telemetry.FromLogged(n.runID, ev))
	}
	events = append(events, telemetry.Event{
		Timestamp:  time.Now(),
		Kind:       telemetry.KindGeneration,
		RunID:      n.runID,
		Generation: res.Generation,
		Data:       map[string]int{"words": res.WordCount, "events": len(res.Events)},
	})
	return n.emitter.Emit(events...)
}

// Sync pulls the peer's state when a peer is configured. A failed sync
// leaves local state untouched.
func (n *Node) Sync(ctx context.Context) error {
	if n.peer == nil {
		return nil
	}
	err := n.peer.Sync(ctx)
	n.metrics.Synced(err == nil)

	evt := telemetry.Event{Timestamp: time.Now(), Kind: telemetry.KindSync, RunID: n.runID}
	if err != nil {
		evt.Kind = telemetry.KindSyncFailed
		evt.Summary = err.Error()
	}
	evt.Generation = n.engine.Generation()
	if emitErr := n.emitter.Emit(evt); emitErr != nil {
		n.logger.Warn("telemetry write failed", zap.Error(emitErr))
	}
	if err != nil {
		n.logger.Debug("peer sync failed", zap.Error(err))
		return err
	}

	if err := n.persist(ctx, nil); err != nil {
		n.logger.Error("saving synced state failed", zap.Error(err))
		return err
	}
	return nil
}

// HasPeer reports whether a peer is configured.
func (n *Node) HasPeer() bool {
	return n.peer != nil
}

// Connected reports whether the last peer sync succeeded.
func (n *Node) Connected() bool {
	return n.peer != nil && n.peer.Connected()
}

// Mirroring reports whether the node currently follows a remote source, in
// which case it must not advance on its own.
func (n *Node) Mirroring() bool {
	return n.Connected()
}

// Sentence generates a sentence from the current lexicon.
func (n *Node) Sentence() sentence.Sentence {
	return n.engine.Sentence()
}

// Snapshot returns a copy of the current state.
func (n *Node) Snapshot() *lexicon.State {
	return n.engine.Snapshot()
}

// History returns the recent-history view.
func (n *Node) History() lexicon.History {
	return n.engine.History()
}

// Package engine advances a lexicon population one generation at a time.
//
// The Engine owns its lexicon.State. Every mutation (Advance, Replace) and
// every read (Snapshot, Sentence) is serialized behind one mutex, so callers
// on different goroutines always observe whole generations. Readers receive
// deep copies and can hold them freely.
package engine

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/papapumpkin/lexis/internal/catalog"
	"github.com/papapumpkin/lexis/internal/lexicon"
	"github.com/papapumpkin/lexis/internal/phonology"
	"github.com/papapumpkin/lexis/internal/sentence"
)

// Rule constants.
const (
	BirthProbability    = 0.7
	ShiftProbability    = 0.1
	CompoundProbability = 0.15

	BirthFitness      = 0.5
	UseBonus          = 0.1
	AgeDecay          = 0.05
	DisuseDecay       = 0.2
	DisuseGracePeriod = 3

	// MinCompoundWords is the living-word count below which compounding
	// never fires.
	MinCompoundWords = 4

	// SeedConcepts is how many concepts a fresh lexicon starts with.
	SeedConcepts = 10

	// DefaultMaxBirthAttempts caps how many forms a birth draws while
	// looking for an unused one.
	DefaultMaxBirthAttempts = 1000
)

// Result is the outcome of one Advance call.
type Result struct {
	Generation int                   `json:"generation"`
	Events     []lexicon.LoggedEvent `json:"events"`
	WordCount  int                   `json:"wordCount"`
}

// Engine applies the evolution rules to a lexicon state.
type Engine struct {
	mu    sync.Mutex
	state *lexicon.State

	rng         *rand.Rand
	phon        *phonology.Generator
	catalog     *catalog.Catalog
	now         func() time.Time
	maxAttempts int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source. All draws of the engine, its phonology
// generator and sentence generation come from it.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithSeed seeds a fresh random source.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithCatalog sets the concept catalog. The default is catalog.Default().
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithClock sets the clock used to stamp logged events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMaxBirthAttempts caps the unique-form search of the birth rule. A
// birth that exhausts it is skipped for that generation.
func WithMaxBirthAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// New returns an Engine that owns state. A nil state starts an empty lexicon
// at generation 0. The state is normalized before use.
func New(state *lexicon.State, opts ...Option) *Engine {
	if state == nil {
		state = lexicon.NewState()
	}
	state.Normalize()
	e := &Engine{
		state:       state,
		catalog:     catalog.Default(),
		now:         time.Now,
		maxAttempts: DefaultMaxBirthAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	e.phon = phonology.New(e.rng)
	return e
}

// NewSeeded returns an Engine over a fresh lexicon holding up to
// SeedConcepts distinct concepts, each named by one generated word.
func NewSeeded(opts ...Option) *Engine {
	e := New(nil, opts...)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seed(SeedConcepts)
	return e
}

func (e *Engine) seed(n int) {
	concepts := append([]string(nil), e.catalog.Concepts()...)
	e.rng.Shuffle(len(concepts), func(i, j int) { concepts[i], concepts[j] = concepts[j], concepts[i] })
	if n > len(concepts) {
		n = len(concepts)
	}
	for _, concept := range concepts[:n] {
		form, ok := e.uniqueForm()
		if !ok {
			return
		}
		e.insertWord(form, concept, e.state.Generation)
	}
}

// Advance moves the lexicon forward exactly one generation, applying birth,
// usage, decay, extinction, sound shift and compounding in that order, and
// returns the events produced. It never fails.
func (e *Engine) Advance() Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.state
	s.Generation++
	gen := s.Generation

	var events []lexicon.Event
	if ev := e.birth(gen); ev != nil {
		events = append(events, ev)
	}
	e.use()
	e.decay(gen)
	events = append(events, e.extinguish(gen)...)
	if ev := e.shift(gen); ev != nil {
		events = append(events, ev)
	}
	if ev := e.compound(gen); ev != nil {
		events = append(events, ev)
	}

	at := e.now()
	logged := make([]lexicon.LoggedEvent, len(events))
	for i, ev := range events {
		logged[i] = lexicon.LoggedEvent{Event: ev, At: at}
	}
	s.AppendEvents(logged...)

	return Result{Generation: gen, Events: logged, WordCount: len(s.Words)}
}

// Sentence samples the current lexicon into a pseudo-sentence.
func (e *Engine) Sentence() sentence.Sentence {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sentence.Generate(e.rng, e.state)
}

// Snapshot returns a deep copy of the current state.
func (e *Engine) Snapshot() *lexicon.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// History returns the recent-history view of the current state.
func (e *Engine) History() lexicon.History {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.History()
}

// Generation returns the current generation index.
func (e *Engine) Generation() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Generation
}

// Replace swaps the owned state for the one next returns. next receives a
// copy of the current state and runs under the engine lock, so the swap is a
// single atomic assignment as seen by every other caller. A nil return keeps
// the current state.
func (e *Engine) Replace(next func(current *lexicon.State) *lexicon.State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := next(e.state.Clone())
	if s == nil {
		return
	}
	s.Normalize()
	e.state = s
}

// Catalog returns the engine's concept catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

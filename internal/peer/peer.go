// Package peer mirrors a remote lexis node. A Synchronizer fetches the
// remote snapshot over HTTP and merges it into the local engine as one atomic
// replacement; any failure leaves local state untouched and marks the peer
// as not connected.
package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/lexis/internal/lexicon"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 3 * time.Second

// SnapshotPath is the endpoint a node serves its snapshot on.
const SnapshotPath = "/api/lexicon"

// maxBody caps the size of a remote snapshot.
const maxBody = 16 << 20

// ErrMalformed is returned for a remote payload that cannot be merged.
var ErrMalformed = errors.New("malformed remote snapshot")

// Snapshot is a remote node's state as received. Pointer and nil fields
// distinguish absent values from zero ones. Remote events are never used,
// so they are not decoded.
type Snapshot struct {
	Words       map[string]*lexicon.Word     `json:"words"`
	Compounds   map[string]*lexicon.Compound `json:"compounds"`
	Generation  *int                         `json:"generation"`
	Extinct     []lexicon.ExtinctRecord      `json:"extinct"`
	SoundShifts []lexicon.ShiftRecord        `json:"sound_shifts"`
	Stats       *lexicon.Stats               `json:"stats"`
}

// Merge folds remote into local and returns the result; local is modified
// in place. Words, compounds and generation come from remote; the longer
// extinct and sound-shift histories win; remote stats replace local ones when
// present; the local event log is always kept.
func Merge(local *lexicon.State, remote *Snapshot) *lexicon.State {
	local.Words = remote.Words
	local.Compounds = remote.Compounds
	if remote.Generation != nil {
		local.Generation = *remote.Generation
	}
	if len(remote.Extinct) > len(local.Extinct) {
		local.Extinct = remote.Extinct
	}
	if len(remote.SoundShifts) > len(local.SoundShifts) {
		local.SoundShifts = remote.SoundShifts
	}
	if remote.Stats != nil {
		local.Stats = *remote.Stats
	}
	local.Normalize()
	return local
}

// Client fetches snapshots from a remote node.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the node at baseURL. A non-positive
// timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves and decodes the remote snapshot.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+SnapshotPath, nil)
	if err != nil {
		return nil, fmt.Errorf("peer: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("peer: fetch %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("peer: fetch %s: status %d", c.baseURL, resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("peer: %w: %v", ErrMalformed, err)
	}
	if snap.Words == nil {
		return nil, fmt.Errorf("peer: %w: missing words", ErrMalformed)
	}
	return &snap, nil
}

// Replacer is the engine surface a Synchronizer writes through.
type Replacer interface {
	Replace(next func(current *lexicon.State) *lexicon.State)
}

// Synchronizer pulls a remote node's state into a local engine.
type Synchronizer struct {
	client    *Client
	target    Replacer
	logger    *zap.Logger
	connected atomic.Bool
}

// NewSynchronizer returns a Synchronizer writing into target. A nil logger
// disables logging.
func NewSynchronizer(client *Client, target Replacer, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{client: client, target: target, logger: logger}
}

// Sync fetches the remote snapshot and merges it. On error local state is
// unchanged and Connected reports false.
func (s *Synchronizer) Sync(ctx context.Context) error {
	remote, err := s.client.Fetch(ctx)
	if err != nil {
		if s.connected.Swap(false) {
			s.logger.Warn("peer disconnected", zap.String("peer", s.client.baseURL), zap.Error(err))
		}
		return err
	}
	s.target.Replace(func(current *lexicon.State) *lexicon.State {
		return Merge(current, remote)
	})
	if !s.connected.Swap(true) {
		s.logger.Info("peer connected", zap.String("peer", s.client.baseURL))
	}
	s.logger.Debug("merged remote snapshot",
		zap.Int("words", len(remote.Words)),
		zap.Int("compounds", len(remote.Compounds)))
	return nil
}

// Connected reports whether the last Sync succeeded.
func (s *Synchronizer) Connected() bool {
	return s.connected.Load()
}

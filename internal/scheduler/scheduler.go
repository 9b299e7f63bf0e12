// Package scheduler drives a node on fixed intervals: periodic peer
// resynchronization, and autonomous advancement while the node is not
// mirroring a peer.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/lexis/internal/engine"
)

// Target is the node surface the scheduler drives.
type Target interface {
	Advance(ctx context.Context) (engine.Result, error)
	Sync(ctx context.Context) error
	HasPeer() bool
	Mirroring() bool
}

// Config sets the scheduler intervals. A zero interval disables that
// trigger.
type Config struct {
	AdvanceEvery time.Duration
	SyncEvery    time.Duration
}

// Scheduler fires advance and sync triggers against a Target.
type Scheduler struct {
	target Target
	cfg    Config
	logger *zap.Logger
}

// New returns a Scheduler. A nil logger disables logging.
func New(target Target, cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{target: target, cfg: cfg, logger: logger}
}

// Run blocks until ctx is done. Triggers run one at a time on the calling
// goroutine, so a slow sync delays the next advance rather than overlapping
// it.
func (s *Scheduler) Run(ctx context.Context) error {
	advanceC, stopAdvance := tick(s.cfg.AdvanceEvery)
	defer stopAdvance()

	var syncC <-chan time.Time
	if s.target.HasPeer() {
		var stopSync func()
		syncC, stopSync = tick(s.cfg.SyncEvery)
		defer stopSync()
		s.sync(ctx)
	}

	s.logger.Info("scheduler started",
		zap.Duration("advance_every", s.cfg.AdvanceEvery),
		zap.Duration("sync_every", s.cfg.SyncEvery),
		zap.Bool("peer", s.target.HasPeer()))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-syncC:
			s.sync(ctx)
		case <-advanceC:
			s.advance(ctx)
		}
	}
}

func (s *Scheduler) sync(ctx context.Context) {
	if err := s.target.Sync(ctx); err != nil {
		s.logger.Debug("scheduled sync failed", zap.Error(err))
	}
}

func (s *Scheduler) advance(ctx context.Context) {
	if s.target.Mirroring() {
		s.logger.Debug("skipping autonomous advance while mirroring")
		return
	}
	if _, err := s.target.Advance(ctx); err != nil {
		s.logger.Warn("scheduled advance not fully recorded", zap.Error(err))
	}
}

// tick returns a ticker channel for d, or a nil channel that never fires
// when d is not positive.
func tick(d time.Duration) (<-chan time.Time, func()) {
	if d <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(d)
	return t.C, t.Stop
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papapumpkin/lexis/internal/config"
	"github.com/papapumpkin/lexis/internal/metrics"
	"github.com/papapumpkin/lexis/internal/node"
	"github.com/papapumpkin/lexis/internal/peer"
	"github.com/papapumpkin/lexis/internal/scheduler"
	"github.com/papapumpkin/lexis/internal/server"
	"github.com/papapumpkin/lexis/internal/store"
	"github.com/papapumpkin/lexis/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lexicon as an HTTP service",
	Long: `Serve the lexicon over HTTP and evolve it on a timer.

With --peer, the node mirrors another lexis instance: it pulls the remote
lexicon every sync interval and stops evolving on its own while the peer is
reachable.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().String("peer", "", "base URL of a lexis node to mirror")
	serveCmd.Flags().Duration("advance-interval", 0, "time between autonomous generations (default 30s)")
	serveCmd.Flags().Duration("sync-interval", 0, "time between peer syncs (default 10s)")
	serveCmd.Flags().String("telemetry", "", "JSONL telemetry path (default lexis.events.jsonl)")

	_ = viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("peer_url", serveCmd.Flags().Lookup("peer"))
	_ = viper.BindPFlag("advance_interval", serveCmd.Flags().Lookup("advance-interval"))
	_ = viper.BindPFlag("sync_interval", serveCmd.Flags().Lookup("sync-interval"))
	_ = viper.BindPFlag("telemetry_path", serveCmd.Flags().Lookup("telemetry"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("serve: build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	eng, restored, err := node.Bootstrap(ctx, st, opts...)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run", runID))
	logger.Info("lexicon ready",
		zap.Bool("restored", restored),
		zap.Int("generation", eng.Generation()),
		zap.String("db", cfg.DBPath))

	emitter, err := telemetry.NewEmitter(cfg.TelemetryPath)
	if err != nil {
		return err
	}
	defer emitter.Close()
	if err := emitter.Emit(telemetry.Event{
		Timestamp:  time.Now(),
		Kind:       telemetry.KindStart,
		RunID:      runID,
		Generation: eng.Generation(),
		Data:       map[string]any{"restored": restored, "peer": cfg.PeerURL},
	}); err != nil {
		logger.Warn("telemetry write failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var syncer *peer.Synchronizer
	if cfg.PeerURL != "" {
		syncer = peer.NewSynchronizer(peer.NewClient(cfg.PeerURL, cfg.SyncTimeout), eng, logger.Named("peer"))
	}

	n := node.New(eng, node.Options{
		Store:   st,
		Emitter: emitter,
		Metrics: metrics.New(reg),
		Peer:    syncer,
		Logger:  logger.Named("node"),
		RunID:   runID,
	})

	srv := server.New(n, cfg.ListenAddr, reg, logger.Named("http"))
	if err := srv.Start(); err != nil {
		return err
	}

	sched := scheduler.New(n, scheduler.Config{
		AdvanceEvery: cfg.AdvanceInterval,
		SyncEvery:    cfg.SyncInterval,
	}, logger.Named("scheduler"))
	runErr := sched.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := st.SaveState(shutdownCtx, n.Snapshot()); err != nil {
		logger.Error("final save failed", zap.Error(err))
	}
	logger.Info("stopped", zap.Int("generation", eng.Generation()))

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

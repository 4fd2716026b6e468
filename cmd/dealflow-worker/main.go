package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"dealflow/internal/config"
	"dealflow/internal/recorder"
	"dealflow/internal/store"
)

// The worker advances every saved game on a cron schedule, for deployments
// where the world moves in real time instead of on player request.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.New(pool, logger)
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Error("schema init failed", "err", err)
		os.Exit(1)
	}

	var rec recorder.Recorder = recorder.NoopRecorder{}
	if cfg.RecorderPath != "" {
		sq, err := recorder.NewSQLiteRecorder(cfg.RecorderPath, logger)
		if err != nil {
			logger.Error("recorder open failed", "err", err)
			os.Exit(1)
		}
		rec = sq
	}
	defer rec.Close()

	sweep := func() {
		ids, err := st.ListGameIDs(ctx)
		if err != nil {
			logger.Error("list games failed", "err", err)
			return
		}
		for _, id := range ids {
			result, state, err := st.AdvanceWeek(ctx, id, uuid.NewString())
			if err != nil {
				logger.Error("advance failed", "game_id", id, "err", err)
				continue
			}
			if err := rec.RecordTick(&recorder.TickSnapshot{
				GameID:        id,
				Week:          result.Week,
				QuarterClosed: result.QuarterClosed,
				Volatility:    state.Volatility,
				Cash:          state.Player.Cash,
				Reputation:    state.Player.Reputation,
				Stress:        state.Player.Stress,
				PortfolioSize: len(state.Player.Portfolio),
				EventCount:    len(result.NewEvents),
				WarningCount:  len(result.Warnings),
			}); err != nil {
				logger.Warn("record tick failed", "err", err)
			}
			logger.Info("week advanced", "game_id", id, "week", result.Week,
				"quarter_closed", result.QuarterClosed, "events", len(result.NewEvents))
		}
	}

	if cfg.RunOnce {
		sweep()
		logger.Info("worker run-once completed")
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.TickSpec, sweep); err != nil {
		logger.Error("bad tick schedule", "spec", cfg.TickSpec, "err", err)
		os.Exit(1)
	}
	c.Start()
	logger.Info("worker started", "tick_spec", cfg.TickSpec)

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("worker shutdown")
}

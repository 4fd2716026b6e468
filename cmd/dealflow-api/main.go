package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealflow/internal/api"
	"dealflow/internal/config"
	"dealflow/internal/ic"
	"dealflow/internal/notify"
	"dealflow/internal/recorder"
	"dealflow/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
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

	var notifier notify.Notifier = notify.Noop{}
	if cfg.DiscordBotToken != "" && cfg.DiscordChannelID != "" {
		d, err := notify.NewDiscord(cfg.DiscordBotToken, cfg.DiscordChannelID, logger)
		if err != nil {
			logger.Warn("discord notifier disabled", "err", err)
		} else {
			notifier = d
		}
	}
	defer notifier.Close()

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		logger.Error("tuning load failed", "err", err)
		os.Exit(1)
	}
	icOpts := committeeOptions(tuning)

	server := api.New(cfg, logger, st, rec, notifier, icOpts)
	go server.RunTimers(ctx)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("dealflow api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func committeeOptions(t config.Tuning) ic.Options {
	c := t.Committee
	opts := ic.Options{
		MaxQuestions:        c.MaxQuestions,
		PitchSeconds:        c.PitchSeconds,
		ResponseSeconds:     c.ResponseSeconds,
		DeliberationSeconds: c.DeliberationSeconds,
	}
	if len(c.Weights) > 0 {
		opts.Weights = ic.Weights(c.Weights)
	}
	if c.Thresholds.Approved > 0 {
		opts.Thresholds = ic.Thresholds{
			Approved:    c.Thresholds.Approved,
			Conditional: c.Thresholds.Conditional,
			Tabled:      c.Thresholds.Tabled,
		}
	}
	return opts
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr             string
	DatabaseURL      string
	RecorderPath     string
	TuningPath       string
	DiscordBotToken  string
	DiscordChannelID string
	RequestTimeout   time.Duration
	StartVolatility  string
	SeedPipeline     bool
}

type WorkerConfig struct {
	DatabaseURL  string
	RecorderPath string
	TuningPath   string
	TickSpec     string
	RunOnce      bool
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("DEALFLOW_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:             addr,
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RecorderPath:     envDefault("DEALFLOW_RECORDER_PATH", ""),
		TuningPath:       envDefault("DEALFLOW_TUNING_PATH", ""),
		DiscordBotToken:  strings.TrimSpace(os.Getenv("DEALFLOW_DISCORD_BOT_TOKEN")),
		DiscordChannelID: strings.TrimSpace(os.Getenv("DEALFLOW_DISCORD_CHANNEL_ID")),
		RequestTimeout:   envDurationDefault("DEALFLOW_REQUEST_TIMEOUT", 30*time.Second),
		StartVolatility:  envVolatilityDefault(),
		SeedPipeline:     envBoolDefault("DEALFLOW_SEED_PIPELINE", true),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	cfg := WorkerConfig{
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RecorderPath: envDefault("DEALFLOW_RECORDER_PATH", ""),
		TuningPath:   envDefault("DEALFLOW_TUNING_PATH", ""),
		TickSpec:     envDefault("DEALFLOW_TICK_CRON", "@every 1h"),
		RunOnce:      envBoolDefault("DEALFLOW_TICK_ONCE", false),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("DF_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envVolatilityDefault() string {
	v := strings.ToUpper(strings.TrimSpace(os.Getenv("DEALFLOW_START_VOLATILITY")))
	switch v {
	case "NORMAL", "BULL_RUN", "CREDIT_CRUNCH", "PANIC":
		return v
	default:
		return "NORMAL"
	}
}

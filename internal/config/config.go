// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/hperssn/quickshower/internal/domain"
)

type Config struct {
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" default:"quickshower.db"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	FrameInterval  time.Duration `env:"FRAME_INTERVAL" default:"16ms"`
	ResetDuration  time.Duration `env:"RESET_DURATION" default:"200ms"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" default:"1h"`

	// Defaults for sessions that do not choose for themselves.
	AutoAdvance bool   `env:"AUTO_ADVANCE" default:"false"`
	Direction   string `env:"DIRECTION" default:"down"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) DefaultDirection() domain.Direction {
	d, _ := domain.ParseDirection(c.Direction)
	return d
}

func validate(cfg *Config) error {
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		return errors.New("one of DATABASE_URL or SQLITE_PATH is required")
	}
	if cfg.FrameInterval <= 0 {
		return errors.New("FRAME_INTERVAL must be positive")
	}
	if cfg.ResetDuration <= 0 {
		return errors.New("RESET_DURATION must be positive")
	}
	if cfg.SessionIdleTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL must be positive")
	}
	if _, err := domain.ParseDirection(cfg.Direction); err != nil {
		return fmt.Errorf("DIRECTION: %w", err)
	}
	return nil
}

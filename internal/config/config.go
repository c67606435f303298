// Package config loads hsmctl settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrInvalidLogFormat is returned for log formats other than text and json
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidRankDir is returned for unknown Graphviz rank directions
	ErrInvalidRankDir = errors.New("invalid rank direction")

	dotenvLoaded sync.Once
)

// Config holds the CLI settings
type Config struct {
	LogLevel  string `env:"HSMCTL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"HSMCTL_LOG_FORMAT" envDefault:"text"`
	RankDir   string `env:"HSMCTL_RANKDIR" envDefault:"TB"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment take precedence over it.
func Load() (Config, error) {
	dotenvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}
	switch strings.ToUpper(c.RankDir) {
	case "TB", "LR", "BT", "RL":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRankDir, c.RankDir)
	}
	return nil
}

// Level returns the parsed log level, defaulting to info
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel parses debug, info, warn or error
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

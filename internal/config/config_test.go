package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HSMCTL_LOG_LEVEL", "")
	t.Setenv("HSMCTL_LOG_FORMAT", "")
	t.Setenv("HSMCTL_RANKDIR", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, Config{LogLevel: "info", LogFormat: "text", RankDir: "TB"}, cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HSMCTL_LOG_LEVEL", "debug")
	t.Setenv("HSMCTL_LOG_FORMAT", "json")
	t.Setenv("HSMCTL_RANKDIR", "LR")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "LR", cfg.RankDir)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		target error
	}{
		{name: "log format", key: "HSMCTL_LOG_FORMAT", value: "xml", target: ErrInvalidLogFormat},
		{name: "rank direction", key: "HSMCTL_RANKDIR", value: "UP", target: ErrInvalidRankDir},
		{name: "log level", key: "HSMCTL_LOG_LEVEL", value: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("")
	assert.Error(t, err)
}

package hooks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anggasct/hsm"
)

// LoggingHook logs state entries, exits and errors through slog
type LoggingHook struct {
	logger *slog.Logger
	level  slog.Level
	attrs  []any
}

// NewLoggingHook creates a logging hook. Entries and exits are logged at
// level; errors are always logged at slog.LevelError.
func NewLoggingHook(logger *slog.Logger, level slog.Level, attrs ...any) *LoggingHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHook{
		logger: logger,
		level:  level,
		attrs:  attrs,
	}
}

// OnEnter logs state entry
func (h *LoggingHook) OnEnter(state hsm.State) {
	h.log(h.level, "state entered", "state", state.Name())
}

// OnExit logs state exit
func (h *LoggingHook) OnExit(state hsm.State) {
	h.log(h.level, "state exited", "state", state.Name())
}

// OnError logs an error, with the transition details when available
func (h *LoggingHook) OnError(err error) {
	var terr *hsm.TransitionError
	if errors.As(err, &terr) {
		h.log(slog.LevelError, "transition failed",
			"from", terr.From,
			"to", terr.To,
			"event", terr.Event,
			"stage", string(terr.Stage),
			"error", terr.Err,
		)
		return
	}
	h.log(slog.LevelError, "machine error", "error", err)
}

func (h *LoggingHook) log(level slog.Level, msg string, args ...any) {
	h.logger.Log(context.Background(), level, msg, append(args, h.attrs...)...)
}

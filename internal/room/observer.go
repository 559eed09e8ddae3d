package room

import (
	"context"
	"log/slog"
)

// CallEvent records one call to the room service.
type CallEvent struct {
	Op        string // provision or release
	Key       string
	LatencyMs int64
	Attempts  int
	Success   bool
	ErrorCode string
}

// Observer receives room service call events.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a slog.Logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	o.logger.Log(context.Background(), level, "room_call",
		"op", event.Op,
		"key", event.Key,
		"latency_ms", event.LatencyMs,
		"attempts", event.Attempts,
		"success", event.Success,
		"error_code", event.ErrorCode,
	)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

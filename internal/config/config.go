// Package config resolves runtime settings from HORIZON_* environment
// variables layered over defaults.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings.
type Config struct {
	DBPath      string
	LogUseCases bool
	LogLevel    slog.Level

	// RoomBaseURL is used for link rooms when no room API is configured.
	RoomBaseURL     string
	RoomAPIEndpoint string
	RoomAPIToken    string
	RoomTimeoutMs   int
	RoomMaxRetries  int
	LogRoomCalls    bool

	BookingTimeoutMs    int
	PropagationMaxDepth int
	SuggestionLimit     int
	SearchDays          int
}

// Default returns the configuration used when no variable is set.
// DBPath is left empty and resolved against the home directory by Load.
func Default() Config {
	return Config{
		LogLevel:            slog.LevelInfo,
		RoomBaseURL:         "https://meet.jit.si",
		RoomTimeoutMs:       5000,
		RoomMaxRetries:      1,
		BookingTimeoutMs:    15000,
		PropagationMaxDepth: 64,
		SuggestionLimit:     5,
		SearchDays:          7,
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for any unset or malformed value.
func Load() (Config, error) {
	cfg := Default()

	cfg.DBPath = os.Getenv("HORIZON_DB")
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, err
		}
		cfg.DBPath = filepath.Join(home, ".horizon", "horizon.db")
	}

	if v := os.Getenv("HORIZON_LOG_USE_CASES"); v != "" {
		cfg.LogUseCases, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("HORIZON_LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(v))); err == nil {
			cfg.LogLevel = lvl
		}
	}

	if v := os.Getenv("HORIZON_ROOM_BASE_URL"); v != "" {
		cfg.RoomBaseURL = v
	}
	cfg.RoomAPIEndpoint = os.Getenv("HORIZON_ROOM_API")
	cfg.RoomAPIToken = os.Getenv("HORIZON_ROOM_API_TOKEN")
	if v := os.Getenv("HORIZON_ROOM_LOG_CALLS"); v != "" {
		cfg.LogRoomCalls, _ = strconv.ParseBool(v)
	}
	positiveInt(&cfg.RoomTimeoutMs, "HORIZON_ROOM_TIMEOUT_MS")
	nonNegativeInt(&cfg.RoomMaxRetries, "HORIZON_ROOM_MAX_RETRIES")

	positiveInt(&cfg.BookingTimeoutMs, "HORIZON_BOOKING_TIMEOUT_MS")
	positiveInt(&cfg.PropagationMaxDepth, "HORIZON_PROPAGATION_MAX_DEPTH")
	positiveInt(&cfg.SuggestionLimit, "HORIZON_SUGGESTION_LIMIT")
	positiveInt(&cfg.SearchDays, "HORIZON_SEARCH_DAYS")

	return cfg, nil
}

// BookingTimeout returns the saga deadline.
func (c Config) BookingTimeout() time.Duration {
	return time.Duration(c.BookingTimeoutMs) * time.Millisecond
}

func positiveInt(dst *int, envName string) {
	if v := os.Getenv(envName); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func nonNegativeInt(dst *int, envName string) {
	if v := os.Getenv(envName); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*dst = n
		}
	}
}

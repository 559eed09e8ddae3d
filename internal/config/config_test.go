package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://meet.jit.si", cfg.RoomBaseURL)
	assert.Equal(t, 15*time.Second, cfg.BookingTimeout())
	assert.Equal(t, 64, cfg.PropagationMaxDepth)
	assert.Equal(t, 5, cfg.SuggestionLimit)
	assert.Equal(t, 7, cfg.SearchDays)
	assert.False(t, cfg.LogUseCases)
}

func TestLoad_DefaultDBPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HORIZON_DB", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".horizon", "horizon.db"), cfg.DBPath)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HORIZON_DB", "/tmp/h.db")
	t.Setenv("HORIZON_LOG_USE_CASES", "true")
	t.Setenv("HORIZON_LOG_LEVEL", "debug")
	t.Setenv("HORIZON_ROOM_API", "https://rooms.internal")
	t.Setenv("HORIZON_ROOM_MAX_RETRIES", "0")
	t.Setenv("HORIZON_BOOKING_TIMEOUT_MS", "2500")
	t.Setenv("HORIZON_PROPAGATION_MAX_DEPTH", "3")
	t.Setenv("HORIZON_SEARCH_DAYS", "14")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.db", cfg.DBPath)
	assert.True(t, cfg.LogUseCases)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "https://rooms.internal", cfg.RoomAPIEndpoint)
	assert.Equal(t, 0, cfg.RoomMaxRetries)
	assert.Equal(t, 2500*time.Millisecond, cfg.BookingTimeout())
	assert.Equal(t, 3, cfg.PropagationMaxDepth)
	assert.Equal(t, 14, cfg.SearchDays)
}

func TestLoad_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("HORIZON_DB", "/tmp/h.db")
	t.Setenv("HORIZON_BOOKING_TIMEOUT_MS", "soon")
	t.Setenv("HORIZON_PROPAGATION_MAX_DEPTH", "-1")
	t.Setenv("HORIZON_SUGGESTION_LIMIT", "0")
	t.Setenv("HORIZON_LOG_LEVEL", "loud")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15000, cfg.BookingTimeoutMs)
	assert.Equal(t, 64, cfg.PropagationMaxDepth)
	assert.Equal(t, 5, cfg.SuggestionLimit)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

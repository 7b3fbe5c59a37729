package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.ParticipantActiveWindow)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, time.Second, cfg.FlushDebounce)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.DataFile)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PARTICIPANT_ACTIVE_WINDOW", "30s")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("DATA_FILE", "/tmp/sessions.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ParticipantActiveWindow)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "/tmp/sessions.json", cfg.DataFile)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

func TestLoad_RedisAndFileAreExclusive(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("DATA_FILE", "/tmp/sessions.json")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoad_TTLMustExceedActiveWindow(t *testing.T) {
	t.Setenv("PARTICIPANT_ACTIVE_WINDOW", "10m")
	t.Setenv("SESSION_TTL", "5m")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	// Store selection: RedisURL wins over DataFile; neither means in-memory.
	RedisURL string
	DataFile string

	// Expiry policy windows. Participants with no heartbeat inside
	// ParticipantActiveWindow count as inactive; sessions idle longer than
	// SessionTTL are deleted.
	ParticipantActiveWindow time.Duration
	SessionTTL              time.Duration
	SweepInterval           time.Duration
	FlushDebounce           time.Duration

	// Per-IP rate limit on mutating endpoints.
	RatePerSecond float64
	RateBurst     int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		RedisURL:      getEnv("REDIS_URL", ""),
		DataFile:      getEnv("DATA_FILE", ""),
		RatePerSecond: 20,
		RateBurst:     40,
	}

	var err error
	if cfg.ParticipantActiveWindow, err = getDuration("PARTICIPANT_ACTIVE_WINDOW", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.FlushDebounce, err = getDuration("FLUSH_DEBOUNCE", time.Second); err != nil {
		return nil, err
	}

	if cfg.RedisURL != "" && cfg.DataFile != "" {
		return nil, fmt.Errorf("REDIS_URL and DATA_FILE are mutually exclusive")
	}
	if cfg.ParticipantActiveWindow <= 0 {
		return nil, fmt.Errorf("PARTICIPANT_ACTIVE_WINDOW must be positive")
	}
	if cfg.SessionTTL <= cfg.ParticipantActiveWindow {
		return nil, fmt.Errorf("SESSION_TTL must be longer than PARTICIPANT_ACTIVE_WINDOW")
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if cfg.FlushDebounce <= 0 {
		return nil, fmt.Errorf("FLUSH_DEBOUNCE must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s or 15m: %w", key, err)
	}
	return d, nil
}

package poker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParticipantActive(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	window := 60 * time.Second

	assert.True(t, ParticipantActive(now, now, window))
	assert.True(t, ParticipantActive(now, now.Add(-59*time.Second), window))
	// Exactly at the window boundary counts as inactive
	assert.False(t, ParticipantActive(now, now.Add(-60*time.Second), window))
	assert.False(t, ParticipantActive(now, now.Add(-time.Hour), window))
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	assert.False(t, SessionExpired(now, now, ttl))
	// Exactly at the TTL is still live; expiry needs strictly more idle time
	assert.False(t, SessionExpired(now, now.Add(-15*time.Minute), ttl))
	assert.True(t, SessionExpired(now, now.Add(-15*time.Minute-time.Second), ttl))
}

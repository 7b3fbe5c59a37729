package poker

import "time"

// ParticipantActive reports whether a participant with the given last activity
// still counts as present for voting-completeness and active-count purposes.
func ParticipantActive(now, lastActivity time.Time, window time.Duration) bool {
	return now.Sub(lastActivity) < window
}

// SessionExpired reports whether a session with the given last activity is
// eligible for deletion.
func SessionExpired(now, lastActivity time.Time, ttl time.Duration) bool {
	return now.Sub(lastActivity) > ttl
}

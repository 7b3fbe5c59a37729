package poker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSweeper_EvictsExpiredSessions(t *testing.T) {
	te := newTestEngine(t)
	session := te.createSession(t)

	sweeper := NewSweeper(te.engine, te.clock, time.Minute)
	sweeper.Start()
	defer sweeper.Stop()

	// Wait for the sweep loop to be waiting on its ticker
	te.clock.BlockUntil(1)

	te.clock.Advance(testSessionTTL + time.Minute)

	require.Eventually(t, func() bool {
		count, err := te.store.Count(context.Background())
		return err == nil && count == 0
	}, 2*time.Second, 10*time.Millisecond, "expected session %s to be swept", session.Code)
}

func TestSweeper_StopIsIdempotent(t *testing.T) {
	te := newTestEngine(t)

	sweeper := NewSweeper(te.engine, te.clock, time.Minute)
	sweeper.Start()

	sweeper.Stop()
	sweeper.Stop()
}

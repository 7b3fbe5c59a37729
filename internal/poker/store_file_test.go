package poker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_MissingSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	store, err := NewFileStore(path, clockwork.NewFakeClock(), time.Second)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFileStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewFileStore(path, clockwork.NewFakeClock(), time.Second)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFileStore_RoundTripAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	ctx := context.Background()

	store, err := NewFileStore(path, clockwork.NewFakeClock(), time.Second)
	require.NoError(t, err)

	session := testSession("ABCD")
	require.NoError(t, store.Put(ctx, session))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path, clockwork.NewFakeClock(), time.Second)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, ok, err := reopened.Get(ctx, "ABCD")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.JiraKey, got.JiraKey)
	assert.True(t, session.CreatedAt.Equal(got.CreatedAt))
	assert.NotNil(t, got.Participants)
	assert.NotNil(t, got.Votes)
}

func TestFileStore_DebouncedFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	fakeClock := clockwork.NewFakeClock()
	ctx := context.Background()

	store, err := NewFileStore(path, fakeClock, time.Second)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Put(ctx, testSession("AAAA")))
	require.NoError(t, store.Put(ctx, testSession("BBBB")))

	// Nothing on disk until the debounce window elapses
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	fakeClock.Advance(time.Second)

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	reopened, err := NewFileStore(path, clockwork.NewFakeClock(), time.Second)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFileStore_CloseRacingDebounceKeepsSnapshotIntact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	fakeClock := clockwork.NewFakeClock()
	ctx := context.Background()

	store, err := NewFileStore(path, fakeClock, time.Second)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, testSession("ABCD")))

	// Fire the debounce callback and close immediately; whichever flush
	// lands last, the snapshot must stay parseable.
	fakeClock.Advance(time.Second)
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path, clockwork.NewFakeClock(), time.Second)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFileStore_CloseFlushesAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	ctx := context.Background()

	store, err := NewFileStore(path, clockwork.NewFakeClock(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, testSession("ABCD")))

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ABCD")
}

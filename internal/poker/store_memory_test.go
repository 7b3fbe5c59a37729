package poker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinlin/planning-poker/internal/domain"
)

func testSession(code string) *domain.Session {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	return &domain.Session{
		Code:         code,
		JiraKey:      "PROJ-1",
		Title:        "Test story",
		Participants: []domain.Participant{},
		Votes:        []domain.Vote{},
		Status:       domain.StatusActive,
		CreatedAt:    now,
		LastActivity: now,
	}
}

func TestMemoryStore_PutGetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, testSession("ABCD")))

	got, ok, err := store.Get(ctx, "ABCD")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "PROJ-1", got.JiraKey)

	exists, err := store.Exists(ctx, "ABCD")
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.Delete(ctx, "ABCD"))
	_, ok, err = store.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_DeleteMissingIsNoop(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Delete(context.Background(), "ZZZZ"))
}

func TestMemoryStore_ClonesOnReadAndWrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := testSession("ABCD")
	original.Participants = append(original.Participants, domain.Participant{ID: "p1", Name: "alice"})
	require.NoError(t, store.Put(ctx, original))

	// Mutating the caller's copy must not leak into the store
	original.Participants[0].Name = "mallory"

	got, ok, err := store.Get(ctx, "ABCD")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Participants[0].Name)

	// Mutating a read result must not leak either
	got.Participants[0].Name = "mallory"
	again, _, err := store.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Participants[0].Name)
}

func TestMemoryStore_List(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testSession("AAAA")))
	require.NoError(t, store.Put(ctx, testSession("BBBB")))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *Session {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	return &Session{
		Code:    "AB12",
		JiraKey: "PROJ-42",
		Title:   "Payment retries",
		Participants: []Participant{
			{ID: "p1", Name: "Alice", IsActive: true, JoinedAt: now, LastActivity: now},
			{ID: "p2", Name: "Bob", IsActive: true, JoinedAt: now, LastActivity: now},
		},
		Votes: []Vote{
			{ParticipantID: "p1", Value: 5, SubmittedAt: now},
		},
		Status:       StatusVoting,
		CreatedAt:    now,
		LastActivity: now,
	}
}

func TestSession_CloneIsIndependent(t *testing.T) {
	original := sampleSession()
	estimate := 8
	original.FinalEstimate = &estimate

	cp := original.Clone()
	cp.Participants[0].Name = "Mallory"
	cp.Votes[0].Value = 13
	*cp.FinalEstimate = 21

	assert.Equal(t, "Alice", original.Participants[0].Name)
	assert.Equal(t, 5, original.Votes[0].Value)
	assert.Equal(t, 8, *original.FinalEstimate)
}

func TestSession_ParticipantByNameIsCaseInsensitive(t *testing.T) {
	s := sampleSession()

	assert.NotNil(t, s.ParticipantByName("ALICE"))
	assert.NotNil(t, s.ParticipantByName("bob"))
	assert.Nil(t, s.ParticipantByName("carol"))
}

func TestSession_SetVoteReplacesExisting(t *testing.T) {
	s := sampleSession()

	s.SetVote(Vote{ParticipantID: "p1", Value: 13})
	require.Len(t, s.Votes, 1)
	assert.Equal(t, 13, s.Votes[0].Value)

	s.SetVote(Vote{ParticipantID: "p2", Value: 3})
	assert.Len(t, s.Votes, 2)
}

func TestSession_RemoveParticipantPrunesVote(t *testing.T) {
	s := sampleSession()

	require.True(t, s.RemoveParticipant("p1"))
	assert.Len(t, s.Participants, 1)
	assert.Empty(t, s.Votes)

	assert.False(t, s.RemoveParticipant("p1"))
}

func TestSession_JSONRoundTrip(t *testing.T) {
	original := sampleSession()
	estimate := 5
	original.FinalEstimate = &estimate

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Session
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.Code, decoded.Code)
	assert.Equal(t, original.Status, decoded.Status)
	assert.True(t, original.CreatedAt.Equal(decoded.CreatedAt))
	assert.True(t, original.Participants[0].LastActivity.Equal(decoded.Participants[0].LastActivity))
	require.NotNil(t, decoded.FinalEstimate)
	assert.Equal(t, 5, *decoded.FinalEstimate)
}

func TestSession_FinalEstimateOmittedWhenUnset(t *testing.T) {
	data, err := json.Marshal(sampleSession())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "finalEstimate")
}

func TestValidEstimate(t *testing.T) {
	for _, v := range EstimateScale {
		assert.True(t, ValidEstimate(v), "scale value %d", v)
	}
	for _, v := range []int{0, 4, 6, 7, 34, -1} {
		assert.False(t, ValidEstimate(v), "off-scale value %d", v)
	}
}

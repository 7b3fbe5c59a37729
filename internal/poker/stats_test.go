package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinlin/planning-poker/internal/domain"
)

func sessionWithVotes(values ...int) *domain.Session {
	s := &domain.Session{
		Participants: []domain.Participant{},
		Votes:        []domain.Vote{},
	}
	for i, v := range values {
		id := string(rune('a' + i))
		s.Participants = append(s.Participants, domain.Participant{ID: id, Name: "voter-" + id})
		s.Votes = append(s.Votes, domain.Vote{ParticipantID: id, Value: v})
	}
	return s
}

func TestStats_Empty(t *testing.T) {
	stats := Stats(sessionWithVotes())

	assert.Empty(t, stats.Votes)
	assert.Nil(t, stats.Min)
	assert.Nil(t, stats.Max)
	assert.Empty(t, stats.Distinct)
}

func TestStats_MinMaxDistinct(t *testing.T) {
	stats := Stats(sessionWithVotes(8, 3, 8, 13))

	require.NotNil(t, stats.Min)
	require.NotNil(t, stats.Max)
	assert.Equal(t, 3, *stats.Min)
	assert.Equal(t, 13, *stats.Max)
	assert.Equal(t, []int{3, 8, 13}, stats.Distinct)
	assert.Len(t, stats.Votes, 4)
}

func TestStats_NamesVoters(t *testing.T) {
	s := sessionWithVotes(5)
	s.Votes = append(s.Votes, domain.Vote{ParticipantID: "ghost", Value: 8})

	stats := Stats(s)
	require.Len(t, stats.Votes, 2)
	assert.Equal(t, "voter-a", stats.Votes[0].ParticipantName)
	assert.Equal(t, "Unknown", stats.Votes[1].ParticipantName)
}

func TestSuggestEstimate(t *testing.T) {
	tests := []struct {
		name      string
		votes     []int
		want      int
		suggested bool
	}{
		{"no votes", nil, 0, false},
		{"unanimous", []int{5, 5, 5}, 5, true},
		{"single vote", []int{8}, 8, true},
		{"two values with majority", []int{5, 5, 8}, 5, true},
		{"two values tied", []int{5, 8}, 0, false},
		{"three values", []int{3, 5, 8}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestEstimate(sessionWithVotes(tt.votes...))
			assert.Equal(t, tt.suggested, ok)
			if tt.suggested {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

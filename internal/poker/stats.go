package poker

import (
	"slices"

	"github.com/kevinlin/planning-poker/internal/domain"
)

// NamedVote pairs a vote value with the voter's display name for rendering.
type NamedVote struct {
	ParticipantName string `json:"participantName"`
	Value           int    `json:"value"`
}

// VoteStats is a read-only view over a session's votes, used by callers to
// render discussion prompts (min/max divergence) and finalize shortcuts.
type VoteStats struct {
	Votes    []NamedVote `json:"votes"`
	Min      *int        `json:"min,omitempty"`
	Max      *int        `json:"max,omitempty"`
	Distinct []int       `json:"distinct"`
}

// Stats derives vote statistics from a session snapshot.
func Stats(s *domain.Session) VoteStats {
	stats := VoteStats{
		Votes:    make([]NamedVote, 0, len(s.Votes)),
		Distinct: []int{},
	}

	seen := make(map[int]bool)
	for _, v := range s.Votes {
		name := "Unknown"
		if p := s.ParticipantByID(v.ParticipantID); p != nil {
			name = p.Name
		}
		stats.Votes = append(stats.Votes, NamedVote{ParticipantName: name, Value: v.Value})

		if stats.Min == nil || v.Value < *stats.Min {
			value := v.Value
			stats.Min = &value
		}
		if stats.Max == nil || v.Value > *stats.Max {
			value := v.Value
			stats.Max = &value
		}
		if !seen[v.Value] {
			seen[v.Value] = true
			stats.Distinct = append(stats.Distinct, v.Value)
		}
	}
	slices.Sort(stats.Distinct)
	return stats
}

// SuggestEstimate returns an advisory finalize value:
// one distinct vote value suggests that value; two distinct values suggest the
// strict majority (none on a tie); three or more yield no suggestion.
func SuggestEstimate(s *domain.Session) (int, bool) {
	stats := Stats(s)
	switch len(stats.Distinct) {
	case 1:
		return stats.Distinct[0], true
	case 2:
		counts := make(map[int]int)
		for _, v := range s.Votes {
			counts[v.Value]++
		}
		a, b := stats.Distinct[0], stats.Distinct[1]
		if counts[a] > counts[b] {
			return a, true
		}
		if counts[b] > counts[a] {
			return b, true
		}
		return 0, false
	default:
		return 0, false
	}
}

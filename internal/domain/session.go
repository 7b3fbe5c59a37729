package domain

import (
	"strings"
	"time"
)

// Status is the session state machine position.
//
// active -> voting -> revealed -> finalized, with reset returning any state
// to active (votes cleared). finalized is terminal except for reset.
type Status string

const (
	StatusActive    Status = "active"
	StatusVoting    Status = "voting"
	StatusRevealed  Status = "revealed"
	StatusFinalized Status = "finalized"
)

// Vote is one participant's current estimate. At most one vote per
// participant; re-voting replaces the previous entry.
type Vote struct {
	ParticipantID string    `json:"participantId"`
	Value         int       `json:"value"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Participant is a named voter within a session. IsActive is a derived flag
// refreshed by the engine: true iff now-LastActivity is within the configured
// activity window.
type Participant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"isActive"`
	JoinedAt     time.Time `json:"joinedAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// Session is the aggregate root: one estimation round for a single work item,
// identified by a short shareable code. A session exclusively owns its
// participants and votes.
type Session struct {
	Code          string        `json:"code"`
	JiraKey       string        `json:"jiraKey"`
	Title         string        `json:"title"`
	Participants  []Participant `json:"participants"`
	Votes         []Vote        `json:"votes"`
	Status        Status        `json:"status"`
	FinalEstimate *int          `json:"finalEstimate,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastActivity  time.Time     `json:"lastActivity"`
}

// Clone returns a deep copy. The engine hands out clones so callers can never
// alias store-owned state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Participants = make([]Participant, len(s.Participants))
	copy(cp.Participants, s.Participants)
	cp.Votes = make([]Vote, len(s.Votes))
	copy(cp.Votes, s.Votes)
	if s.FinalEstimate != nil {
		v := *s.FinalEstimate
		cp.FinalEstimate = &v
	}
	return &cp
}

// ParticipantByID returns a pointer into the session's participant slice.
func (s *Session) ParticipantByID(id string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i]
		}
	}
	return nil
}

// ParticipantByName matches case-insensitively, per the join contract.
func (s *Session) ParticipantByName(name string) *Participant {
	for i := range s.Participants {
		if strings.EqualFold(s.Participants[i].Name, name) {
			return &s.Participants[i]
		}
	}
	return nil
}

// VoteByParticipant returns the participant's current vote, if any.
func (s *Session) VoteByParticipant(participantID string) (Vote, bool) {
	for _, v := range s.Votes {
		if v.ParticipantID == participantID {
			return v, true
		}
	}
	return Vote{}, false
}

// SetVote records a vote, replacing any prior vote by the same participant.
func (s *Session) SetVote(v Vote) {
	for i := range s.Votes {
		if s.Votes[i].ParticipantID == v.ParticipantID {
			s.Votes[i] = v
			return
		}
	}
	s.Votes = append(s.Votes, v)
}

// RemoveParticipant drops the participant and prunes their vote, keeping the
// votes-subset-of-participants invariant. Returns false if the id is unknown.
func (s *Session) RemoveParticipant(participantID string) bool {
	idx := -1
	for i := range s.Participants {
		if s.Participants[i].ID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.Participants = append(s.Participants[:idx], s.Participants[idx+1:]...)
	for i := range s.Votes {
		if s.Votes[i].ParticipantID == participantID {
			s.Votes = append(s.Votes[:i], s.Votes[i+1:]...)
			break
		}
	}
	return true
}

// ClearVotes empties the vote set without touching participants.
func (s *Session) ClearVotes() {
	s.Votes = s.Votes[:0]
}

package poker

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/kevinlin/planning-poker/internal/domain"
	apperrors "github.com/kevinlin/planning-poker/internal/errors"
	"github.com/kevinlin/planning-poker/internal/metrics"
)

// Engine implements all session state transitions against a SessionStore.
//
// Every operation takes a per-code mutex for its whole read-modify-write
// span, so two concurrent votes (or a vote racing a removal) on the same
// session serialize instead of losing updates. Sessions handed back to
// callers are deep copies.
type Engine struct {
	store        domain.SessionStore
	clock        clockwork.Clock
	activeWindow time.Duration
	sessionTTL   time.Duration

	mu        sync.Mutex
	codeLocks map[string]*codeLock
}

// codeLock serializes read-modify-write operations on one session code.
// refs counts holders and waiters, so an entry is only dropped once idle
// and the same code can never resolve to two different mutexes.
type codeLock struct {
	mu   sync.Mutex
	refs int
}

// NewEngine creates the session engine. activeWindow bounds participant
// presence, sessionTTL bounds session lifetime; both come from configuration.
func NewEngine(store domain.SessionStore, clock clockwork.Clock, activeWindow, sessionTTL time.Duration) *Engine {
	return &Engine{
		store:        store,
		clock:        clock,
		activeWindow: activeWindow,
		sessionTTL:   sessionTTL,
		codeLocks:    make(map[string]*codeLock),
	}
}

// lockCode acquires the per-code mutex, creating the entry on first use.
func (e *Engine) lockCode(code string) *codeLock {
	e.mu.Lock()
	l, ok := e.codeLocks[code]
	if !ok {
		l = &codeLock{}
		e.codeLocks[code] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return l
}

// unlockCode releases the per-code mutex and removes the map entry once no
// goroutine holds or waits on it, keeping the map bounded by in-flight work.
func (e *Engine) unlockCode(code string, l *codeLock) {
	l.mu.Unlock()
	e.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(e.codeLocks, code)
	}
	e.mu.Unlock()
}

// checkCode rejects malformed codes before any lock state is allocated
// for them. Request-supplied strings that cannot name a session must not
// leave a trace in the lock map.
func (e *Engine) checkCode(code string) error {
	if !validCode(code) {
		return apperrors.NotFoundError("session not found").WithField("session_code", code)
	}
	return nil
}

// CreateSession starts a new estimation round in the active state.
func (e *Engine) CreateSession(ctx context.Context, jiraKey, title string) (*domain.Session, error) {
	jiraKey = strings.TrimSpace(jiraKey)
	title = strings.TrimSpace(title)
	if jiraKey == "" {
		return nil, apperrors.ValidationError("jira key is required")
	}
	if title == "" {
		return nil, apperrors.ValidationError("title is required")
	}

	code, lock, err := e.claimCode(ctx)
	if err != nil {
		return nil, err
	}
	defer e.unlockCode(code, lock)

	now := e.clock.Now()
	session := &domain.Session{
		Code:         code,
		JiraKey:      jiraKey,
		Title:        title,
		Participants: []domain.Participant{},
		Votes:        []domain.Vote{},
		Status:       domain.StatusActive,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := e.store.Put(ctx, session); err != nil {
		return nil, err
	}

	metrics.SessionsCreatedTotal.Inc()
	slog.Info("Session created", "session_code", code, "jira_key", jiraKey)
	return session.Clone(), nil
}

// load fetches a live session. Expired sessions are evicted and reported as
// not found; the caller must hold the code lock.
func (e *Engine) load(ctx context.Context, code string) (*domain.Session, error) {
	session, ok, err := e.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFoundError("session not found").WithField("session_code", code)
	}
	if SessionExpired(e.clock.Now(), session.LastActivity, e.sessionTTL) {
		e.evictExpired(ctx, code)
		return nil, apperrors.NotFoundError("session not found").WithField("session_code", code)
	}
	return session, nil
}

// evictExpired deletes an expired session. Named separately so the lookup
// contract stays an explicit two-step: report absent, then evict.
func (e *Engine) evictExpired(ctx context.Context, code string) {
	if err := e.store.Delete(ctx, code); err != nil {
		slog.Error("Failed to evict expired session", "session_code", code, "error", err)
		return
	}
	metrics.SessionsDeletedTotal.WithLabelValues("expired").Inc()
	slog.Info("Expired session evicted", "session_code", code)
}

func (e *Engine) touch(s *domain.Session) {
	s.LastActivity = e.clock.Now()
}

func (e *Engine) refreshPresence(s *domain.Session) {
	now := e.clock.Now()
	for i := range s.Participants {
		s.Participants[i].IsActive = ParticipantActive(now, s.Participants[i].LastActivity, e.activeWindow)
	}
}

// GetSession looks up a session by code. Expired sessions are evicted and
// reported as not found.
func (e *Engine) GetSession(ctx context.Context, code string) (*domain.Session, error) {
	if err := e.checkCode(code); err != nil {
		return nil, err
	}
	lock := e.lockCode(code)
	defer e.unlockCode(code, lock)

	session, err := e.load(ctx, code)
	if err != nil {
		return nil, err
	}
	e.refreshPresence(session)
	return session.Clone(), nil
}

// ListSessions returns all unexpired sessions, newest first.
func (e *Engine) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	sessions, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	live := make([]*domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if SessionExpired(now, s.LastActivity, e.sessionTTL) {
			continue
		}
		cp := s.Clone()
		e.refreshPresence(cp)
		live = append(live, cp)
	}
	sort.Slice(live, func(i, j int) bool {
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})
	return live, nil
}

// Join adds a named participant to a session, or reactivates an inactive
// participant with the same name (the rejoin path). An active participant
// already holding the name is a conflict.
func (e *Engine) Join(ctx context.Context, code, name string) (*domain.Session, *domain.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, apperrors.ValidationError("name is required")
	}
	if err := e.checkCode(code); err != nil {
		return nil, nil, err
	}

	lock := e.lockCode(code)
	defer e.unlockCode(code, lock)

	session, err := e.load(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	now := e.clock.Now()
	var joined *domain.Participant
	if existing := session.ParticipantByName(name); existing != nil {
		if ParticipantActive(now, existing.LastActivity, e.activeWindow) {
			return nil, nil, apperrors.ConflictError("name already taken").
				WithField("session_code", code).
				WithField("name", name)
		}
		existing.LastActivity = now
		existing.IsActive = true
		joined = existing
		metrics.ParticipantsJoinedTotal.WithLabelValues("rejoin").Inc()
	} else {
		session.Participants = append(session.Participants, domain.Participant{
			ID:           uuid.NewString(),
			Name:         name,
			IsActive:     true,
			JoinedAt:     now,
			LastActivity: now,
		})
		joined = &session.Participants[len(session.Participants)-1]
		metrics.ParticipantsJoinedTotal.WithLabelValues("new").Inc()
	}

	e.touch(session)
	e.refreshPresence(session)
	if err := e.store.Put(ctx, session); err != nil {
		return nil, nil, err
	}

	slog.Info("Participant joined", "session_code", code, "participant_id", joined.ID)
	participant := *joined
	return session.Clone(), &participant, nil
}

// SubmitVote records a participant's estimate, replacing any prior vote.
// The session moves to voting (if still active) and auto-reveals once every
// currently active participant has voted.
func (e *Engine) SubmitVote(ctx context.Context, code, participantID string, value int) (*domain.Session, error) {
	if !domain.ValidEstimate(value) {
		return nil, apperrors.ValidationError("vote value is not on the estimate scale").
			WithField("value", value)
	}
	if err := e.checkCode(code); err != nil {
		return nil, err
	}

	lock := e.lockCode(code)
	defer e.unlockCode(code, lock)

	session, err := e.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Status == domain.StatusFinalized {
		return nil, apperrors.ConflictError("session is finalized").
			WithField("session_code", code)
	}

	now := e.clock.Now()
	participant := session.ParticipantByID(participantID)
	if participant == nil || !ParticipantActive(now, participant.LastActivity, e.activeWindow) {
		return nil, apperrors.ForbiddenError("participant not found or inactive").
			WithField("session_code", code).
			WithField("participant_id", participantID)
	}

	session.SetVote(domain.Vote{
		ParticipantID: participantID,
		Value:         value,
		SubmittedAt:   now,
	})
	participant.LastActivity = now

	if session.Status == domain.StatusActive {
		session.Status = domain.StatusVoting
	}
	if e.allActiveVoted(session, now) {
		session.Status = domain.StatusRevealed
	}

	e.touch(session)
	e.refreshPresence(session)
	if err := e.store.Put(ctx, session); err != nil {
		return nil, err
	}

	metrics.VotesSubmittedTotal.Inc()
	return session.Clone(), nil
}

// allActiveVoted implements the auto-reveal condition: at least one vote
// exists and every currently active participant has one.
func (e *Engine) allActiveVoted(s *domain.Session, now time.Time) bool {
	if len(s.Votes) == 0 {
		return false
	}
	active := 0
	for _, p := range s.Participants {
		if !ParticipantActive(now, p.LastActivity, e.activeWindow) {
			continue
		}
		active++
		if _, ok := s.VoteByParticipant(p.ID); !ok {
			return false
		}
	}
	return active > 0
}

// Reveal forces the revealed state regardless of vote completeness. Idempotent.
func (e *Engine) Reveal(ctx context.Context, code string) (*domain.Session, error) {
	return e.mutate(ctx, code, func(s *domain.Session) error {
		s.Status = domain.StatusRevealed
		return nil
	})
}

// Finalize fixes the agreed estimate and ends voting.
func (e *Engine) Finalize(ctx context.Context, code string, estimate int) (*domain.Session, error) {
	if !domain.ValidEstimate(estimate) {
		return nil, apperrors.ValidationError("estimate is not on the estimate scale").
			WithField("estimate", estimate)
	}
	return e.mutate(ctx, code, func(s *domain.Session) error {
		s.Status = domain.StatusFinalized
		s.FinalEstimate = &estimate
		return nil
	})
}

// Reset clears all votes and the final estimate and returns to active.
func (e *Engine) Reset(ctx context.Context, code string) (*domain.Session, error) {
	return e.mutate(ctx, code, func(s *domain.Session) error {
		s.ClearVotes()
		s.FinalEstimate = nil
		s.Status = domain.StatusActive
		return nil
	})
}

// TouchActivity is the heartbeat: it refreshes the participant's presence
// without otherwise mutating session state.
func (e *Engine) TouchActivity(ctx context.Context, code, participantID string) (*domain.Session, error) {
	return e.mutate(ctx, code, func(s *domain.Session) error {
		participant := s.ParticipantByID(participantID)
		if participant == nil {
			return apperrors.ForbiddenError("participant not found").
				WithField("session_code", code).
				WithField("participant_id", participantID)
		}
		participant.LastActivity = e.clock.Now()
		participant.IsActive = true
		return nil
	})
}

// mutate runs fn against the locked, live session, touches activity and
// persists the result.
func (e *Engine) mutate(ctx context.Context, code string, fn func(*domain.Session) error) (*domain.Session, error) {
	if err := e.checkCode(code); err != nil {
		return nil, err
	}
	lock := e.lockCode(code)
	defer e.unlockCode(code, lock)

	session, err := e.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	e.touch(session)
	e.refreshPresence(session)
	if err := e.store.Put(ctx, session); err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// RemoveParticipant drops a participant and any vote of theirs. Removing the
// last participant deletes the session itself; deleted reports that cascade
// so adapters cannot miss it.
func (e *Engine) RemoveParticipant(ctx context.Context, code, participantID string) (session *domain.Session, deleted bool, err error) {
	if err := e.checkCode(code); err != nil {
		return nil, false, err
	}
	lock := e.lockCode(code)
	defer e.unlockCode(code, lock)

	live, err := e.load(ctx, code)
	if err != nil {
		return nil, false, err
	}

	if !live.RemoveParticipant(participantID) {
		return nil, false, apperrors.NotFoundError("participant not found").
			WithField("session_code", code).
			WithField("participant_id", participantID)
	}

	if len(live.Participants) == 0 {
		if err := e.store.Delete(ctx, code); err != nil {
			return nil, false, err
		}
		metrics.SessionsDeletedTotal.WithLabelValues("empty").Inc()
		slog.Info("Session deleted with last participant", "session_code", code)
		return nil, true, nil
	}

	e.touch(live)
	e.refreshPresence(live)
	if err := e.store.Put(ctx, live); err != nil {
		return nil, false, err
	}
	return live.Clone(), false, nil
}

// DeleteSession removes a session explicitly.
func (e *Engine) DeleteSession(ctx context.Context, code string) error {
	if err := e.checkCode(code); err != nil {
		return err
	}
	lock := e.lockCode(code)
	defer e.unlockCode(code, lock)

	if _, err := e.load(ctx, code); err != nil {
		return err
	}
	if err := e.store.Delete(ctx, code); err != nil {
		return err
	}
	metrics.SessionsDeletedTotal.WithLabelValues("manual").Inc()
	slog.Info("Session deleted", "session_code", code)
	return nil
}

// SweepExpired enumerates a snapshot of all sessions and deletes the expired
// ones one at a time. A failure on one session never aborts the rest of the
// sweep. Returns the number of sessions deleted.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	sessions, err := e.store.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, s := range sessions {
		code := s.Code
		if !SessionExpired(e.clock.Now(), s.LastActivity, e.sessionTTL) {
			continue
		}

		lock := e.lockCode(code)
		// Recheck under the lock: the session may have been touched or
		// already deleted since the snapshot.
		current, ok, err := e.store.Get(ctx, code)
		if err != nil {
			e.unlockCode(code, lock)
			metrics.SweepErrorsTotal.Inc()
			slog.Error("Sweep failed to load session", "session_code", code, "error", err)
			continue
		}
		if !ok || !SessionExpired(e.clock.Now(), current.LastActivity, e.sessionTTL) {
			e.unlockCode(code, lock)
			continue
		}
		if err := e.store.Delete(ctx, code); err != nil {
			e.unlockCode(code, lock)
			metrics.SweepErrorsTotal.Inc()
			slog.Error("Sweep failed to delete session", "session_code", code, "error", err)
			continue
		}
		e.unlockCode(code, lock)
		metrics.SessionsDeletedTotal.WithLabelValues("expired").Inc()
		slog.Info("Expired session swept", "session_code", code)
		removed++
	}
	return removed, nil
}

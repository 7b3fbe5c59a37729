package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kevinlin/planning-poker/internal/domain"
)

const sessionKeyPrefix = "poker:session:"

// SessionStore persists one JSON value per session code. A per-key TTL acts
// as a backstop to the sweeper: even if the process dies, Redis eventually
// drops abandoned sessions on its own.
type SessionStore struct {
	rdb         *goredis.Client
	backstopTTL time.Duration
}

// NewSessionStore creates a Redis-backed store. sessionTTL is the logical
// session expiry window; keys carry twice that as a physical backstop so the
// engine's lazy eviction always wins the race.
func NewSessionStore(rdb *goredis.Client, sessionTTL time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, backstopTTL: 2 * sessionTTL}
}

func sessionKey(code string) string {
	return sessionKeyPrefix + code
}

func (s *SessionStore) Get(ctx context.Context, code string) (*domain.Session, bool, error) {
	data, err := s.rdb.Get(ctx, sessionKey(code)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get session %s: %w", code, err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false, fmt.Errorf("failed to decode session %s: %w", code, err)
	}
	if session.Participants == nil {
		session.Participants = []domain.Participant{}
	}
	if session.Votes == nil {
		session.Votes = []domain.Vote{}
	}
	return &session, true, nil
}

func (s *SessionStore) Put(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.Code, err)
	}
	if err := s.rdb.Set(ctx, sessionKey(session.Code), data, s.backstopTTL).Err(); err != nil {
		return fmt.Errorf("failed to put session %s: %w", session.Code, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, code string) error {
	if err := s.rdb.Del(ctx, sessionKey(code)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", code, err)
	}
	return nil
}

func (s *SessionStore) List(ctx context.Context) ([]*domain.Session, error) {
	codes, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return []*domain.Session{}, nil
	}

	values, err := s.rdb.MGet(ctx, codes...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Key expired between SCAN and MGET.
			continue
		}
		var session domain.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			// One unreadable record must not take down the listing or
			// the sweep built on it.
			slog.Warn("Skipping undecodable session record", "error", err)
			continue
		}
		if session.Participants == nil {
			session.Participants = []domain.Participant{}
		}
		if session.Votes == nil {
			session.Votes = []domain.Vote{}
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

func (s *SessionStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(code)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session %s: %w", code, err)
	}
	return n > 0, nil
}

func (s *SessionStore) Count(ctx context.Context) (int, error) {
	codes, err := s.keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(codes), nil
}

func (s *SessionStore) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return keys, nil
}

func (s *SessionStore) Close() error {
	return s.rdb.Close()
}

package poker

import (
	"context"
	"sync"

	"github.com/kevinlin/planning-poker/internal/domain"
	"github.com/kevinlin/planning-poker/internal/metrics"
)

// MemoryStore holds sessions in a plain map. State is lost on restart.
// Sessions are cloned on the way in and out so callers never share memory
// with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.Session)}
}

func (s *MemoryStore) Get(_ context.Context, code string) (*domain.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[code]
	if !ok {
		return nil, false, nil
	}
	return session.Clone(), true, nil
}

func (s *MemoryStore) Put(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Code] = session.Clone()
	metrics.StoreSessionsCurrent.Set(float64(len(s.sessions)))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, code)
	metrics.StoreSessionsCurrent.Set(float64(len(s.sessions)))
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session.Clone())
	}
	return sessions, nil
}

func (s *MemoryStore) Exists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[code]
	return ok, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// replaceAll swaps the whole session map. Used by the file store at load time.
func (s *MemoryStore) replaceAll(sessions map[string]*domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
	metrics.StoreSessionsCurrent.Set(float64(len(s.sessions)))
}

// snapshot returns a deep copy of the session map for serialization.
func (s *MemoryStore) snapshot() map[string]*domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]*domain.Session, len(s.sessions))
	for code, session := range s.sessions {
		cp[code] = session.Clone()
	}
	return cp
}

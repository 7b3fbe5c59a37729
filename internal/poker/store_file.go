package poker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kevinlin/planning-poker/internal/domain"
	"github.com/kevinlin/planning-poker/internal/metrics"
)

// fileSnapshot is the persisted format: a flat collection of sessions keyed
// by code. Timestamps serialize as RFC 3339 and round-trip exactly.
type fileSnapshot struct {
	Sessions map[string]*domain.Session `json:"sessions"`
}

// FileStore is a MemoryStore that persists a JSON snapshot of all sessions.
//
// Writes are debounced: each mutation (re)arms a timer, and the snapshot is
// flushed once the burst settles. Flushes go to a temp file that is renamed
// over the target, so a crash mid-write can lose recent activity but never
// corrupt the snapshot. Close flushes synchronously.
type FileStore struct {
	mem      *MemoryStore
	path     string
	clock    clockwork.Clock
	debounce time.Duration

	flushMu sync.Mutex
	timer   clockwork.Timer
	closed  bool

	// writeMu serializes snapshot writes: a debounce callback that fires
	// while Close is flushing must not interleave on the same temp file.
	writeMu sync.Mutex
}

// NewFileStore opens (or creates) the snapshot at path. A missing or corrupt
// snapshot is tolerated: the store starts empty.
func NewFileStore(path string, clock clockwork.Clock, debounce time.Duration) (*FileStore, error) {
	s := &FileStore{
		mem:      NewMemoryStore(),
		path:     path,
		clock:    clock,
		debounce: debounce,
	}
	if err := s.loadSnapshot(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) loadSnapshot() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session snapshot: %w", err)
	}

	var snap fileSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.Warn("Session snapshot is corrupt, starting empty", "path", s.path, "error", err)
		return nil
	}

	sessions := make(map[string]*domain.Session, len(snap.Sessions))
	for code, session := range snap.Sessions {
		if session == nil {
			continue
		}
		if session.Participants == nil {
			session.Participants = []domain.Participant{}
		}
		if session.Votes == nil {
			session.Votes = []domain.Vote{}
		}
		sessions[code] = session
	}
	s.mem.replaceAll(sessions)
	slog.Info("Session snapshot loaded", "path", s.path, "sessions", len(sessions))
	return nil
}

func (s *FileStore) Get(ctx context.Context, code string) (*domain.Session, bool, error) {
	return s.mem.Get(ctx, code)
}

func (s *FileStore) Put(ctx context.Context, session *domain.Session) error {
	if err := s.mem.Put(ctx, session); err != nil {
		return err
	}
	s.scheduleFlush()
	return nil
}

func (s *FileStore) Delete(ctx context.Context, code string) error {
	if err := s.mem.Delete(ctx, code); err != nil {
		return err
	}
	s.scheduleFlush()
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]*domain.Session, error) {
	return s.mem.List(ctx)
}

func (s *FileStore) Exists(ctx context.Context, code string) (bool, error) {
	return s.mem.Exists(ctx, code)
}

func (s *FileStore) Count(ctx context.Context) (int, error) {
	return s.mem.Count(ctx)
}

// scheduleFlush coalesces rapid successive mutations into one flush: the
// timer rearms on every write and fires once the burst settles.
func (s *FileStore) scheduleFlush() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Reset(s.debounce)
		return
	}
	s.timer = s.clock.AfterFunc(s.debounce, func() {
		s.flushMu.Lock()
		s.timer = nil
		closed := s.closed
		s.flushMu.Unlock()
		if closed {
			return
		}
		if err := s.flush(); err != nil {
			metrics.StoreFlushErrorsTotal.Inc()
			slog.Error("Failed to flush session snapshot", "path", s.path, "error", err)
		}
	})
}

func (s *FileStore) flush() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snap := fileSnapshot{Sessions: s.mem.snapshot()}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session snapshot: %w", err)
	}

	metrics.StoreFlushesTotal.Inc()
	slog.Debug("Session snapshot flushed", "path", s.path, "sessions", len(snap.Sessions))
	return nil
}

// Close stops the debounce timer and flushes any pending state.
func (s *FileStore) Close() error {
	s.flushMu.Lock()
	if s.closed {
		s.flushMu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.flushMu.Unlock()

	return s.flush()
}

package domain

import "context"

// SessionStore owns the authoritative code -> Session mapping.
//
// In-memory implementation is used for single-instance, throwaway state.
// File and Redis implementations persist sessions across restarts. All
// implementations must be safe for concurrent use; read-modify-write
// atomicity per code is enforced above the store by the engine.
type SessionStore interface {
	// Get returns the session for code, or (nil, false, nil) when absent.
	// Expiry is not a store concern: expired sessions are returned as-is
	// and evicted by the engine.
	Get(ctx context.Context, code string) (*Session, bool, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) ([]*Session, error)
	Exists(ctx context.Context, code string) (bool, error)
	Count(ctx context.Context) (int, error)

	// Close flushes any pending writes and releases resources.
	Close() error
}

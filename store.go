package controlroom

import (
	"context"
	"fmt"
	"sync"
)

// Store is the session repository: load and persist session states by ID.
// Implementations must serialize writes per session; the turn-index
// invariant cannot survive out-of-order application. The turn engine itself
// never touches a store; the caller loads, processes, and puts back.
type Store interface {
	// Get loads a session state. Returns ErrSessionNotFound for unknown IDs.
	Get(ctx context.Context, sessionID string) (SessionState, error)

	// Put persists a session state, replacing any previous value.
	Put(ctx context.Context, state SessionState) error
}

// MemoryStore is an in-process Store keyed by session ID, with per-session
// write serialization. Suitable for tests and single-process deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionState
	locks    map[string]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]SessionState),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get loads a session state by ID.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return SessionState{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return state.Clone(), nil
}

// Put persists a session state. The stored copy is detached from the
// caller's value.
func (s *MemoryStore) Put(_ context.Context, state SessionState) error {
	if err := ValidateState(state); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = state.Clone()
	return nil
}

// sessionLock returns the per-session mutex, creating it on first use.
func (s *MemoryStore) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// Update runs fn against the current state of one session and persists the
// result, serialized against other updates of the same session. This is the
// safe way to drive ProcessTurn when callers may race.
func (s *MemoryStore) Update(ctx context.Context, sessionID string, fn func(SessionState) (SessionState, error)) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	next, err := fn(state)
	if err != nil {
		return err
	}
	return s.Put(ctx, next)
}

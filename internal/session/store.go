package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"minichat/internal/auth"
)

// Store keeps cookie-keyed sessions for the delegated login flow. The
// password flow never touches it; those sessions live on the connection.
type Store interface {
	Save(ctx context.Context, id string, session auth.Session) error
	Get(ctx context.Context, id string) (auth.Session, error)
	Delete(ctx context.Context, id string) error
}

var ErrNotFound = errors.New("session not found")

type memoryEntry struct {
	session   auth.Session
	expiresAt time.Time
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
	}
}

func (s *MemoryStore) Save(ctx context.Context, id string, session auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memoryEntry{session: session, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (auth.Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return auth.Session{}, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return auth.Session{}, ErrNotFound
	}
	return entry.session, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

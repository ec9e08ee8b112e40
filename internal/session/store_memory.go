package session

import (
	"context"
	"sync"

	"canvass/internal/domain"
	"canvass/pkg/platform/sentinel"
)

// MemoryStore holds the session for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	payload []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.payload == nil {
		return nil, sentinel.ErrNotFound
	}
	return decode(s.payload)
}

func (s *MemoryStore) Save(_ context.Context, sess *domain.Session) error {
	payload, err := encode(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = payload
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = nil
	return nil
}

// Corrupt replaces the stored bytes verbatim. Tests use it to exercise the
// restore path with undecodable data.
func (s *MemoryStore) Corrupt(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = payload
}

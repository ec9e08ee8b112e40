// Package store holds the in-process record store. The hosted and postgres
// subpackages hold the networked ones.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"canvass/internal/domain"
)

// InMemoryStore keeps inserted records in insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []domain.VoterRecord
	now     func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{now: time.Now}
}

// Insert assigns id and created_at the way the networked stores do and
// returns the stored copy.
func (s *InMemoryStore) Insert(_ context.Context, record domain.VoterRecord) (domain.VoterRecord, error) {
	record.ID = domain.RecordID(uuid.NewString())
	record.CreatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return record, nil
}

func (s *InMemoryStore) Probe(_ context.Context) error {
	return nil
}

// Records returns a copy of everything inserted so far.
func (s *InMemoryStore) Records() []domain.VoterRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.VoterRecord, len(s.records))
	copy(out, s.records)
	return out
}

package incident

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory incident store for tests and ephemeral
// deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	incidents []*Incident
}

// NewMemoryStore creates an empty in-memory incident store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Create records a new incident.
func (s *MemoryStore) Create(ctx context.Context, inc *Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inc.ID == "" {
		inc.ID = uuid.NewString()
	}
	if inc.CreatedAt.IsZero() {
		inc.CreatedAt = time.Now().UTC()
	}

	stored := *inc
	s.incidents = append(s.incidents, &stored)
	return nil
}

// List returns the most recent incidents, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.incidents)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*Incident, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		inc := *s.incidents[i]
		out = append(out, &inc)
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"polaris-hq/polaris/pkg/policy"
)

// MemoryStore is an in-memory bundle store for tests and ephemeral
// deployments. All operations work on deep copies so callers can never
// mutate stored state in place.
type MemoryStore struct {
	mu      sync.RWMutex
	bundles map[string]*policy.PolicyBundle
}

// NewMemoryStore creates an empty in-memory bundle store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bundles: make(map[string]*policy.PolicyBundle),
	}
}

// Create stores a new bundle, assigning a surrogate id when absent.
func (s *MemoryStore) Create(ctx context.Context, bundle *policy.PolicyBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bundles {
		if existing.Version == bundle.Version {
			return ErrDuplicateVersion
		}
	}

	stored := bundle.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.bundles[stored.ID] = stored

	// Hand the generated identity back to the caller.
	bundle.ID = stored.ID
	bundle.CreatedAt = stored.CreatedAt
	return nil
}

// Get returns the bundle with the given id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*policy.PolicyBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bundle, ok := s.bundles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return bundle.Clone(), nil
}

// GetByVersion returns the bundle with the given version string.
func (s *MemoryStore) GetByVersion(ctx context.Context, version string) (*policy.PolicyBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, bundle := range s.bundles {
		if bundle.Version == version {
			return bundle.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// List returns all bundles ordered by creation time ascending.
func (s *MemoryStore) List(ctx context.Context) ([]*policy.PolicyBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*policy.PolicyBundle, 0, len(s.bundles))
	for _, bundle := range s.bundles {
		out = append(out, bundle.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Version < out[j].Version
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ActiveBundles returns all bundles currently marked active.
func (s *MemoryStore) ActiveBundles(ctx context.Context) ([]*policy.PolicyBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*policy.PolicyBundle
	for _, bundle := range s.bundles {
		if bundle.Active {
			out = append(out, bundle.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CanaryPct > out[j].CanaryPct })
	return out, nil
}

// LastActivatedBefore returns the most recently activated bundle whose
// activation predates t, excluding excludeID.
func (s *MemoryStore) LastActivatedBefore(ctx context.Context, t time.Time, excludeID string) (*policy.PolicyBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *policy.PolicyBundle
	for _, bundle := range s.bundles {
		if bundle.ID == excludeID || !bundle.WasActivated() {
			continue
		}
		if !bundle.ActivatedAt.Before(t) {
			continue
		}
		if best == nil || bundle.ActivatedAt.After(best.ActivatedAt) {
			best = bundle
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best.Clone(), nil
}

// UpdateAll replaces the stored state of every given bundle atomically.
func (s *MemoryStore) UpdateAll(ctx context.Context, bundles ...*policy.PolicyBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate all before writing any.
	for _, bundle := range bundles {
		if _, ok := s.bundles[bundle.ID]; !ok {
			return ErrNotFound
		}
	}
	for _, bundle := range bundles {
		s.bundles[bundle.ID] = bundle.Clone()
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

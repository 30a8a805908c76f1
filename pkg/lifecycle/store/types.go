package store

import (
	"context"
	"errors"
	"time"

	"polaris-hq/polaris/pkg/policy"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound indicates no bundle matches the given id or version.
	ErrNotFound = errors.New("bundle not found")

	// ErrDuplicateVersion indicates a bundle with the same version string
	// already exists.
	ErrDuplicateVersion = errors.New("bundle version already exists")
)

// Store persists policy bundles. Implementations must serialize UpdateAll
// calls so concurrent lifecycle transitions cannot interleave.
type Store interface {
	// Create stores a new bundle. The bundle's Version must be unique;
	// ErrDuplicateVersion is returned otherwise.
	Create(ctx context.Context, bundle *policy.PolicyBundle) error

	// Get returns the bundle with the given surrogate id, or ErrNotFound.
	Get(ctx context.Context, id string) (*policy.PolicyBundle, error)

	// GetByVersion returns the bundle with the given version string, or
	// ErrNotFound.
	GetByVersion(ctx context.Context, version string) (*policy.PolicyBundle, error)

	// List returns all bundles ordered by creation time ascending.
	List(ctx context.Context) ([]*policy.PolicyBundle, error)

	// ActiveBundles returns all bundles with Active == true. At most two
	// are expected: the fully promoted bundle and an in-flight canary.
	ActiveBundles(ctx context.Context) ([]*policy.PolicyBundle, error)

	// LastActivatedBefore returns the most recently activated bundle whose
	// activation predates t, excluding excludeID. It is how rollback finds
	// the bundle to reinstate. Returns ErrNotFound when no such bundle
	// exists.
	LastActivatedBefore(ctx context.Context, t time.Time, excludeID string) (*policy.PolicyBundle, error)

	// UpdateAll persists the given bundles in a single atomic step: either
	// every bundle is written or none is.
	UpdateAll(ctx context.Context, bundles ...*policy.PolicyBundle) error

	// Close releases backend resources.
	Close() error
}

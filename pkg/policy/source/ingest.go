package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"polaris-hq/polaris/pkg/lifecycle/store"
)

// Ingestor syncs bundles from a file source into the bundle store as
// drafts. Versions already present in the store are left untouched, so an
// ingest pass never disturbs an active or previously reviewed bundle.
type Ingestor struct {
	source *FileSource
	store  store.Store
	logger *slog.Logger
}

// NewIngestor creates an ingestor over the given source and store.
func NewIngestor(src *FileSource, st store.Store, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		source: src,
		store:  st,
		logger: logger.With("component", "policy.source.ingest"),
	}
}

// Sync loads every bundle from the source and creates the ones whose
// version the store has not seen. It returns the number of newly registered
// drafts.
func (i *Ingestor) Sync(ctx context.Context) (int, error) {
	bundles, err := i.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load bundles: %w", err)
	}

	created := 0
	for _, bundle := range bundles {
		err := i.store.Create(ctx, bundle)
		if errors.Is(err, store.ErrDuplicateVersion) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to register draft %q: %w", bundle.Version, err)
		}
		created++
		i.logger.Info("registered draft bundle",
			"version", bundle.Version,
			"rule_count", len(bundle.Rules))
	}
	return created, nil
}

package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"polaris-hq/polaris/pkg/policy"
)

// FileSource loads draft bundles from YAML files on disk.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-based bundle source. The path can be either
// a single file or a directory; for a directory, all .yaml and .yml files
// are loaded.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger.With("component", "policy.source"),
	}
}

// Load reads every bundle from the configured path. Bundles come back as
// drafts: inactive, canary 0, with a generated ID when the file does not
// carry one. Invalid files in a directory are logged and skipped; a single
// explicitly named file that fails to parse is an error.
func (s *FileSource) Load(ctx context.Context) ([]*policy.PolicyBundle, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var bundles []*policy.PolicyBundle
	if info.IsDir() {
		bundles, err = s.loadDirectory(ctx)
	} else {
		var bundle *policy.PolicyBundle
		bundle, err = s.loadFile(s.path)
		if bundle != nil {
			bundles = []*policy.PolicyBundle{bundle}
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("loaded bundles from source",
		"path", s.path,
		"bundle_count", len(bundles))
	return bundles, nil
}

func (s *FileSource) loadDirectory(ctx context.Context) ([]*policy.PolicyBundle, error) {
	var bundles []*policy.PolicyBundle

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		bundle, err := s.loadFile(path)
		if err != nil {
			s.logger.Warn("failed to load bundle file, skipping",
				"path", path,
				"error", err)
			return nil
		}

		bundles = append(bundles, bundle)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}

	return bundles, nil
}

func (s *FileSource) loadFile(path string) (*policy.PolicyBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	var bundle policy.PolicyBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle file %q: %w", path, err)
	}

	// A file source only ever produces drafts. Activation state in a
	// hand-edited file is not trusted.
	bundle.Active = false
	bundle.CanaryPct = 0
	if bundle.ID == "" {
		bundle.ID = uuid.NewString()
	}

	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bundle in %q: %w", path, err)
	}

	s.logger.Debug("loaded bundle file",
		"path", path,
		"version", bundle.Version,
		"rule_count", len(bundle.Rules))
	return &bundle, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"polaris-hq/polaris/pkg/policy"
)

// bundleSchema creates the bundles table. Version carries a unique index:
// the control-plane's persisted-state contract is a bundles collection
// keyed by surrogate id with a unique version string.
const bundleSchema = `
CREATE TABLE IF NOT EXISTS bundles (
	id           TEXT PRIMARY KEY,
	version      TEXT NOT NULL UNIQUE,
	rules        TEXT NOT NULL,
	active       INTEGER NOT NULL DEFAULT 0,
	canary_pct   INTEGER NOT NULL DEFAULT 0,
	approval_id  TEXT,
	activated_by TEXT,
	activated_at INTEGER,
	created_by   TEXT,
	created_at   INTEGER NOT NULL,
	metadata     TEXT
);
CREATE INDEX IF NOT EXISTS idx_bundles_active ON bundles(active);
CREATE INDEX IF NOT EXISTS idx_bundles_activated_at ON bundles(activated_at);
`

// SQLiteStore is a durable bundle store backed by SQLite. It is suitable
// for single-instance deployments; UpdateAll runs inside a transaction so
// lifecycle transitions are atomic.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// SQLiteConfig configures the SQLite bundle store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (or creates) a SQLite-backed bundle store with WAL
// mode enabled.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(bundleSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger := slog.Default().With("component", "lifecycle.store.sqlite")
	logger.Info("bundle store initialized", "path", cfg.Path)

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Create stores a new bundle, assigning a surrogate id when absent.
func (s *SQLiteStore) Create(ctx context.Context, bundle *policy.PolicyBundle) error {
	if bundle.ID == "" {
		bundle.ID = uuid.NewString()
	}
	if bundle.CreatedAt.IsZero() {
		bundle.CreatedAt = time.Now().UTC()
	}

	rules, metadata, err := marshalBundleFields(bundle)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bundles (id, version, rules, active, canary_pct, approval_id, activated_by, activated_at, created_by, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bundle.ID, bundle.Version, rules, boolToInt(bundle.Active), bundle.CanaryPct,
		nullString(bundle.ApprovalID), nullString(bundle.ActivatedBy), nullTime(bundle.ActivatedAt),
		nullString(bundle.CreatedBy), bundle.CreatedAt.UnixNano(), metadata,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVersion
		}
		return fmt.Errorf("failed to insert bundle: %w", err)
	}
	return nil
}

// Get returns the bundle with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*policy.PolicyBundle, error) {
	row := s.db.QueryRowContext(ctx, selectBundle+" WHERE id = ?", id)
	return scanBundle(row)
}

// GetByVersion returns the bundle with the given version string.
func (s *SQLiteStore) GetByVersion(ctx context.Context, version string) (*policy.PolicyBundle, error) {
	row := s.db.QueryRowContext(ctx, selectBundle+" WHERE version = ?", version)
	return scanBundle(row)
}

// List returns all bundles ordered by creation time ascending.
func (s *SQLiteStore) List(ctx context.Context) ([]*policy.PolicyBundle, error) {
	rows, err := s.db.QueryContext(ctx, selectBundle+" ORDER BY created_at ASC, version ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list bundles: %w", err)
	}
	defer rows.Close()
	return scanBundles(rows)
}

// ActiveBundles returns all bundles currently marked active, fully
// promoted bundle first.
func (s *SQLiteStore) ActiveBundles(ctx context.Context) ([]*policy.PolicyBundle, error) {
	rows, err := s.db.QueryContext(ctx, selectBundle+" WHERE active = 1 ORDER BY canary_pct DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query active bundles: %w", err)
	}
	defer rows.Close()
	return scanBundles(rows)
}

// LastActivatedBefore returns the most recently activated bundle whose
// activation predates t, excluding excludeID.
func (s *SQLiteStore) LastActivatedBefore(ctx context.Context, t time.Time, excludeID string) (*policy.PolicyBundle, error) {
	row := s.db.QueryRowContext(ctx, selectBundle+`
		WHERE activated_at IS NOT NULL AND activated_at < ? AND id != ?
		ORDER BY activated_at DESC LIMIT 1`,
		t.UnixNano(), excludeID,
	)
	return scanBundle(row)
}

// UpdateAll persists the given bundles in a single transaction.
func (s *SQLiteStore) UpdateAll(ctx context.Context, bundles ...*policy.PolicyBundle) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, bundle := range bundles {
		rules, metadata, err := marshalBundleFields(bundle)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE bundles
			SET rules = ?, active = ?, canary_pct = ?, approval_id = ?, activated_by = ?, activated_at = ?, metadata = ?
			WHERE id = ?`,
			rules, boolToInt(bundle.Active), bundle.CanaryPct,
			nullString(bundle.ApprovalID), nullString(bundle.ActivatedBy), nullTime(bundle.ActivatedAt),
			metadata, bundle.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update bundle %q: %w", bundle.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check update of bundle %q: %w", bundle.ID, err)
		}
		if affected == 0 {
			return ErrNotFound
		}
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectBundle = `
	SELECT id, version, rules, active, canary_pct, approval_id, activated_by, activated_at, created_by, created_at, metadata
	FROM bundles`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBundle(row rowScanner) (*policy.PolicyBundle, error) {
	var (
		bundle      policy.PolicyBundle
		rules       string
		active      int
		approvalID  sql.NullString
		activatedBy sql.NullString
		activatedAt sql.NullInt64
		createdBy   sql.NullString
		createdAt   int64
		metadata    sql.NullString
	)

	err := row.Scan(&bundle.ID, &bundle.Version, &rules, &active, &bundle.CanaryPct,
		&approvalID, &activatedBy, &activatedAt, &createdBy, &createdAt, &metadata)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bundle: %w", err)
	}

	if err := json.Unmarshal([]byte(rules), &bundle.Rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules for bundle %q: %w", bundle.ID, err)
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &bundle.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for bundle %q: %w", bundle.ID, err)
		}
	}

	bundle.Active = active != 0
	bundle.ApprovalID = approvalID.String
	bundle.ActivatedBy = activatedBy.String
	bundle.CreatedBy = createdBy.String
	bundle.CreatedAt = time.Unix(0, createdAt).UTC()
	if activatedAt.Valid {
		bundle.ActivatedAt = time.Unix(0, activatedAt.Int64).UTC()
	}

	return &bundle, nil
}

func scanBundles(rows *sql.Rows) ([]*policy.PolicyBundle, error) {
	var out []*policy.PolicyBundle
	for rows.Next() {
		bundle, err := scanBundle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bundle)
	}
	return out, rows.Err()
}

func marshalBundleFields(bundle *policy.PolicyBundle) (rules, metadata string, err error) {
	rulesJSON, err := json.Marshal(bundle.Rules)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode rules: %w", err)
	}
	metadataJSON := []byte("{}")
	if bundle.Metadata != nil {
		metadataJSON, err = json.Marshal(bundle.Metadata)
		if err != nil {
			return "", "", fmt.Errorf("failed to encode metadata: %w", err)
		}
	}
	return string(rulesJSON), string(metadataJSON), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UnixNano()
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint violations in the error text;
	// the driver does not export a typed constraint error.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

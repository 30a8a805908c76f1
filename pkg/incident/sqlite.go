package incident

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const incidentSchema = `
CREATE TABLE IF NOT EXISTS incidents (
	id         TEXT PRIMARY KEY,
	agent      TEXT NOT NULL,
	action     TEXT NOT NULL,
	severity   TEXT NOT NULL,
	title      TEXT NOT NULL,
	context    TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_incidents_created_at ON incidents(created_at);
`

// SQLiteStore is a durable incident store backed by SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite-backed incident store with WAL
// mode enabled.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(incidentSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger := slog.Default().With("component", "incident.store.sqlite")
	logger.Info("incident store initialized", "path", path)

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Create records a new incident.
func (s *SQLiteStore) Create(ctx context.Context, inc *Incident) error {
	if inc.ID == "" {
		inc.ID = uuid.NewString()
	}
	if inc.CreatedAt.IsZero() {
		inc.CreatedAt = time.Now().UTC()
	}

	contextJSON := []byte("{}")
	if inc.Context != nil {
		var err error
		contextJSON, err = json.Marshal(inc.Context)
		if err != nil {
			return fmt.Errorf("failed to encode incident context: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO incidents (id, agent, action, severity, title, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inc.ID, inc.Agent, inc.Action, inc.Severity, inc.Title, string(contextJSON), inc.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}
	return nil
}

// List returns the most recent incidents, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Incident, error) {
	query := `
		SELECT id, agent, action, severity, title, context, created_at
		FROM incidents ORDER BY created_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	var out []*Incident
	for rows.Next() {
		var (
			inc       Incident
			contextJS sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&inc.ID, &inc.Agent, &inc.Action, &inc.Severity, &inc.Title, &contextJS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		if contextJS.Valid && contextJS.String != "" {
			if err := json.Unmarshal([]byte(contextJS.String), &inc.Context); err != nil {
				return nil, fmt.Errorf("failed to decode incident context: %w", err)
			}
		}
		inc.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, &inc)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

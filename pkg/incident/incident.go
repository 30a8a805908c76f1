// Package incident records governance incidents raised by the control-plane,
// most notably policy rollbacks. The incident store is an external
// collaborator from the lifecycle manager's point of view: incidents are
// created, never mutated.
package incident

import (
	"context"
	"time"
)

// Severity levels for incidents.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Incident is a single governance incident record.
type Incident struct {
	// ID is the incident's unique identifier.
	ID string `json:"id"`

	// Agent is the subsystem that raised the incident, e.g.
	// "policy.activate".
	Agent string `json:"agent"`

	// Action is the operation that raised the incident, e.g. "rollback".
	Action string `json:"action"`

	// Severity is one of the Severity constants.
	Severity string `json:"severity"`

	// Title is a short human-readable summary.
	Title string `json:"title"`

	// Context carries structured detail, e.g. from_version/to_version for
	// rollbacks.
	Context map[string]interface{} `json:"context,omitempty"`

	// CreatedAt is when the incident was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// Store persists incidents.
type Store interface {
	// Create records a new incident, assigning ID and CreatedAt when
	// absent.
	Create(ctx context.Context, inc *Incident) error

	// List returns the most recent incidents, newest first, up to limit
	// (all when limit <= 0).
	List(ctx context.Context, limit int) ([]*Incident, error)

	// Close releases backend resources.
	Close() error
}

// Package store provides persistence for policy bundles.
//
// Two backends are available: an in-memory store for tests and ephemeral
// deployments, and a SQLite-backed store for durable single-instance
// deployments. Both implement the Store interface, and both make
// UpdateAll atomic so lifecycle transitions (deactivate-old + activate-new,
// or rollback's pair of updates) never leave the "at most one fully
// promoted bundle" invariant transiently violated.
package store

// Package contract provides interfaces and shared utilities for dtreport's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/elomagic/dtreport/schema"
)

// SnapshotSource delivers project snapshots to the report engine.
// Implementations own all network and file I/O so the engine stays a pure transformation.
type SnapshotSource interface {
	// FetchSnapshots returns every project snapshot the source knows about.
	FetchSnapshots(ctx context.Context) ([]schema.ProjectSnapshot, error)
}

// SnapshotSourceFunc adapts a plain function to the SnapshotSource interface.
type SnapshotSourceFunc func(ctx context.Context) ([]schema.ProjectSnapshot, error)

// FetchSnapshots calls f(ctx).
func (f SnapshotSourceFunc) FetchSnapshots(ctx context.Context) ([]schema.ProjectSnapshot, error) {
	return f(ctx)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSnapshotStore() SnapshotStore
}

// SnapshotStore defines the interface for the snapshot cache.
type SnapshotStore interface {
	// SaveSnapshots upserts the snapshots, stamping them with fetchedAt.
	SaveSnapshots(snapshots []schema.ProjectSnapshot, fetchedAt time.Time) error

	// LoadSnapshots returns all cached snapshots.
	LoadSnapshots() ([]schema.ProjectSnapshot, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.CacheStatus, error)

	// Close closes the underlying connection.
	Close() error
}

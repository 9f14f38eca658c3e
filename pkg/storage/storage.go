// Package storage archives finished layouts.
//
// Archived layouts are immutable: a layout is saved once under its ID and
// later fetched, listed, or deleted, never changed in place. Live sets that
// keep growing belong in [github.com/matzehuels/tileme/pkg/session].
//
// Backends:
//   - [MemoryStore]: in-process map, the default for the server
//   - [MongoStore]: a MongoDB collection keyed by layout ID
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/layout"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// ErrNotFound is returned by Get and Delete for unknown IDs.
var ErrNotFound = errors.New(errors.ErrCodeLayoutNotFound, "layout not found")

// Store is the interface for layout archives.
type Store interface {
	// Save stores l under l.ID, replacing any layout with the same ID.
	Save(ctx context.Context, l layout.Layout) error

	// Get returns the layout with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (layout.Layout, error)

	// List returns up to limit layouts, newest first.
	List(ctx context.Context, limit int) ([]layout.Layout, error)

	// Delete removes a layout. Deleting an unknown ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases resources held by the store.
	Close() error
}

// Prepare assigns an ID and creation time to l when they are missing.
func Prepare(l layout.Layout) layout.Layout {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return l
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

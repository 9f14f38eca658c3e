// Package session keeps live tiled sets between requests.
//
// A session holds a tiler snapshot and the item specs that produced it, so
// callers can append items and resume, change the container width, or
// re-tile from scratch without resending the whole set. Backends:
//   - memory: in-process map, for a single server instance
//   - file: JSON files in a directory, for local use
//   - redis: shared storage for multi-instance deployments
//
// # Usage
//
//	sess, err := session.Create(800, tiler.DefaultConfig(), items, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	// later
//	unlock := locker.Lock(id)
//	defer unlock()
//	sess, err := store.Get(ctx, id)
//	if sess == nil {
//	    // Session not found or expired
//	}
//	l, err := sess.Append(more)
//	store.Set(ctx, sess)
//
// The tiler is not reentrant, so passes on one session must be serialized;
// [Locker] provides per-ID mutual exclusion for that.
package session

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/tiler"
)

// DefaultTTL is the default session lifetime, extended on every update.
const DefaultTTL = 24 * time.Hour

// Session is a live tiled set.
type Session struct {
	ID        string            `json:"id"`
	State     tiler.State       `json:"state"`
	Items     []layout.ItemSpec `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// New wraps an existing tiler snapshot in a session with a fresh ID.
func New(state tiler.State, items []layout.ItemSpec, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		State:     state,
		Items:     slices.Clone(items),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Create tiles items into a new container and returns the session holding
// the result. Items are normalized first.
func Create(containerWidth float64, cfg tiler.Config, items []layout.ItemSpec, ttl time.Duration, opts ...tiler.Option) (*Session, error) {
	items, err := layout.NormalizeItems(items)
	if err != nil {
		return nil, err
	}
	t, err := tiler.New(containerWidth, cfg, opts...)
	if err != nil {
		return nil, err
	}
	t.Tile(layout.Requests(items))
	return New(t.State(), items, ttl), nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch marks the session as updated and extends its lifetime.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now().UTC()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Tiler restores a tiler from the session snapshot.
func (s *Session) Tiler(opts ...tiler.Option) (*tiler.Tiler, error) {
	return tiler.Restore(s.State, opts...)
}

// Layout returns the current layout of the session.
func (s *Session) Layout() (layout.Layout, error) {
	t, err := s.Tiler()
	if err != nil {
		return layout.Layout{}, err
	}
	return s.layoutFrom(t), nil
}

// Append adds items to the tiled set and resumes the pass: already placed
// tiles keep their position and the new items stack on top of them.
func (s *Session) Append(items []layout.ItemSpec, opts ...tiler.Option) (layout.Layout, error) {
	all, err := layout.NormalizeItems(append(slices.Clone(s.Items), items...))
	if err != nil {
		return layout.Layout{}, err
	}
	t, err := s.Tiler(opts...)
	if err != nil {
		return layout.Layout{}, err
	}
	t.Append(layout.Requests(all[len(s.Items):])...)
	s.Items = all
	return s.update(t), nil
}

// Resize changes the container width and re-tiles every item.
// On error the session is unchanged.
func (s *Session) Resize(containerWidth float64, opts ...tiler.Option) (layout.Layout, error) {
	t, err := s.Tiler(opts...)
	if err != nil {
		return layout.Layout{}, err
	}
	if _, err := t.Resize(containerWidth); err != nil {
		return layout.Layout{}, err
	}
	return s.update(t), nil
}

// Retile resets the ledger and tiles every item again in caller order.
func (s *Session) Retile(opts ...tiler.Option) (layout.Layout, error) {
	t, err := s.Tiler(opts...)
	if err != nil {
		return layout.Layout{}, err
	}
	t.Retile()
	return s.update(t), nil
}

func (s *Session) update(t *tiler.Tiler) layout.Layout {
	s.State = t.State()
	s.UpdatedAt = time.Now().UTC()
	return s.layoutFrom(t)
}

func (s *Session) layoutFrom(t *tiler.Tiler) layout.Layout {
	l := layout.FromResult(t.Result(), s.Items, t.ContainerWidth(), t.Config().Spacing)
	l.ID = s.ID
	l.CreatedAt = s.UpdatedAt
	return l
}

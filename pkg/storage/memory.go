package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/tileme/pkg/layout"
)

// MemoryStore keeps layouts in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]layout.Layout
}

// NewMemoryStore creates an empty in-memory archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string]layout.Layout)}
}

func (s *MemoryStore) Save(ctx context.Context, l layout.Layout) error {
	l = Prepare(l)
	l.Tiles = slices.Clone(l.Tiles)
	s.mu.Lock()
	s.layouts[l.ID] = l
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (layout.Layout, error) {
	s.mu.RLock()
	l, ok := s.layouts[id]
	s.mu.RUnlock()
	if !ok {
		return layout.Layout{}, ErrNotFound
	}
	l.Tiles = slices.Clone(l.Tiles)
	return l, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]layout.Layout, error) {
	s.mu.RLock()
	out := make([]layout.Layout, 0, len(s.layouts))
	for _, l := range s.layouts {
		out = append(out, l)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b layout.Layout) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[id]; !ok {
		return ErrNotFound
	}
	delete(s.layouts, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

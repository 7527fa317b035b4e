package editor

import (
	"context"
	"sync"
)

// PersistFunc commits one inline edit to the backing store.
type PersistFunc[V any] func(ctx context.Context, id string, value V) error

// OptimisticMap overlays committed-but-unconfirmed values on top of
// authoritative data, keyed by entity id. The overlay is applied before the
// persistence call begins, rolled back if it fails, and cleared only when
// a confirmed refresh of the authoritative data arrives, never on a
// wall-clock delay.
type OptimisticMap[V any] struct {
	mu       sync.Mutex
	overlay  map[string]V
	original map[string]V
	persist  PersistFunc[V]
}

// NewOptimisticMap builds an overlay around a persistence callback.
func NewOptimisticMap[V any](persist PersistFunc[V]) *OptimisticMap[V] {
	return &OptimisticMap[V]{
		overlay:  map[string]V{},
		original: map[string]V{},
		persist:  persist,
	}
}

// Begin captures the original value when an inline edit starts, so a
// failed commit can roll back to it.
func (m *OptimisticMap[V]) Begin(id string, original V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.original[id] = original
}

// Commit applies value to the overlay immediately, then persists it. On
// failure the overlay rolls back to the value captured by Begin and the
// error is returned for the caller to surface.
func (m *OptimisticMap[V]) Commit(ctx context.Context, id string, value V) error {
	m.mu.Lock()
	m.overlay[id] = value
	m.mu.Unlock()

	if err := m.persist(ctx, id, value); err != nil {
		m.mu.Lock()
		if orig, ok := m.original[id]; ok {
			m.overlay[id] = orig
		} else {
			delete(m.overlay, id)
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

// Value returns the overlay value for id if one is pending, otherwise the
// authoritative value.
func (m *OptimisticMap[V]) Value(id string, authoritative V) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.overlay[id]; ok {
		return v
	}
	return authoritative
}

// ConfirmRefresh clears the overlay and captured original for id once the
// refreshed authoritative data has been observed.
func (m *OptimisticMap[V]) ConfirmRefresh(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overlay, id)
	delete(m.original, id)
}

// Pending reports whether id has an unconfirmed overlay value.
func (m *OptimisticMap[V]) Pending(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.overlay[id]
	return ok
}

// Selection tracks the id set a bulk action operates on.
type Selection struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: map[string]struct{}{}}
}

// Toggle adds id to the selection, or removes it if present.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// IDs returns the selected ids.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Len returns the selection size.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = map[string]struct{}{}
}

// BulkFunc sends one bulk request carrying the full id set.
type BulkFunc func(ctx context.Context, action string, ids []string) error

// BulkController runs selection-based bulk actions. On success the
// selection is cleared; on failure it is preserved so the user can retry
// without re-selecting.
type BulkController struct {
	sel *Selection
	run BulkFunc
}

// NewBulkController wires a controller to a selection and a request sink.
func NewBulkController(sel *Selection, run BulkFunc) *BulkController {
	return &BulkController{sel: sel, run: run}
}

// Apply executes action over the current selection as a single request.
func (c *BulkController) Apply(ctx context.Context, action string) error {
	ids := c.sel.IDs()
	if len(ids) == 0 {
		return nil
	}
	if err := c.run(ctx, action, ids); err != nil {
		return err
	}
	c.sel.Clear()
	return nil
}

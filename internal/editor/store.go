// Package editor holds the per-session editing state of one article: the
// ordered block sequence, selection, undo/redo history and the auto-save,
// drag and optimistic-mutation controllers around it.
//
// A DocumentStore is owned by exactly one editing session and is not safe
// for concurrent mutation from multiple goroutines.
package editor

import (
	"github.com/inkpress/core/internal/blocks"
)

const (
	// DefaultMaxHistory bounds the undo stack depth.
	DefaultMaxHistory = 50
	// DefaultMaxRecent bounds the recently-used block type list.
	DefaultMaxRecent = 4
)

// DocumentStore is the in-memory representation of one article under edit.
// Instantiate one per editing session; never share a process-wide instance.
type DocumentStore struct {
	blocks     []*blocks.Block
	selectedID string

	undoStack [][]*blocks.Block
	redoStack [][]*blocks.Block

	recent []blocks.Type

	sidebarCollapsed bool
	panelCollapsed   bool

	maxHistory int
	maxRecent  int
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		maxHistory: DefaultMaxHistory,
		maxRecent:  DefaultMaxRecent,
	}
}

// Load replaces the document with seq, resetting selection and history.
// Used when opening an article for editing.
func (s *DocumentStore) Load(seq []*blocks.Block) {
	s.blocks = seq
	s.selectedID = ""
	s.undoStack = nil
	s.redoStack = nil
}

// Blocks returns the live ordered sequence.
func (s *DocumentStore) Blocks() []*blocks.Block { return s.blocks }

// Get returns the block with the given id, or nil.
func (s *DocumentStore) Get(id string) *blocks.Block {
	for _, b := range s.blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Len returns the number of blocks.
func (s *DocumentStore) Len() int { return len(s.blocks) }

// AddBlock appends b to the sequence. It does not renumber other blocks;
// callers renumber via UpdateBlockOrder when the visual order changes.
func (s *DocumentStore) AddBlock(b *blocks.Block) {
	b.Order = len(s.blocks)
	s.blocks = append(s.blocks, b)
}

// UpdateBlock merges a partial field patch into the matching block's
// payload. An unknown id is a silent no-op.
func (s *DocumentStore) UpdateBlock(id string, patch map[string]any) {
	b := s.Get(id)
	if b == nil {
		return
	}
	b.Data.Merge(patch)
}

// DeleteBlock removes the block with the given id. If it was selected the
// selection becomes empty.
func (s *DocumentStore) DeleteBlock(id string) {
	for i, b := range s.blocks {
		if b.ID == id {
			s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
			if s.selectedID == id {
				s.selectedID = ""
			}
			return
		}
	}
}

// UpdateBlockOrder atomically replaces the whole sequence. Used after a
// reorder so every block's Order matches its index.
func (s *DocumentStore) UpdateBlockOrder(seq []*blocks.Block) {
	s.blocks = seq
}

// SetSelectedBlock selects the given block id; pass "" to clear.
func (s *DocumentStore) SetSelectedBlock(id string) { s.selectedID = id }

// SelectedBlock returns the currently selected block id, "" if none.
func (s *DocumentStore) SelectedBlock() string { return s.selectedID }

// ToggleSidebar flips the palette sidebar collapsed state. UI only, never
// persisted.
func (s *DocumentStore) ToggleSidebar() { s.sidebarCollapsed = !s.sidebarCollapsed }

// TogglePanel flips the inspector panel collapsed state. UI only, never
// persisted.
func (s *DocumentStore) TogglePanel() { s.panelCollapsed = !s.panelCollapsed }

// SidebarCollapsed reports the palette sidebar state.
func (s *DocumentStore) SidebarCollapsed() bool { return s.sidebarCollapsed }

// PanelCollapsed reports the inspector panel state.
func (s *DocumentStore) PanelCollapsed() bool { return s.panelCollapsed }

// SaveToHistory pushes a deep snapshot of the current sequence onto the
// undo stack and clears the redo stack: any new action invalidates forward
// history (linear undo, no branching).
func (s *DocumentStore) SaveToHistory() {
	s.undoStack = append(s.undoStack, snapshot(s.blocks))
	if len(s.undoStack) > s.maxHistory {
		s.undoStack = s.undoStack[1:]
	}
	s.redoStack = nil
}

// CanUndo reports whether an undo snapshot is available.
func (s *DocumentStore) CanUndo() bool { return len(s.undoStack) > 0 }

// CanRedo reports whether a redo snapshot is available.
func (s *DocumentStore) CanRedo() bool { return len(s.redoStack) > 0 }

// Undo replaces the live sequence with the most recent snapshot, pushing
// the current state onto the redo stack.
func (s *DocumentStore) Undo() bool {
	if len(s.undoStack) == 0 {
		return false
	}
	top := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.redoStack = append(s.redoStack, snapshot(s.blocks))
	s.blocks = top
	return true
}

// Redo re-applies the most recently undone state.
func (s *DocumentStore) Redo() bool {
	if len(s.redoStack) == 0 {
		return false
	}
	top := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.undoStack = append(s.undoStack, snapshot(s.blocks))
	s.blocks = top
	return true
}

// AddRecentBlock pushes t to the front of the recently-used list, dropping
// any prior occurrence and trimming to the bound.
func (s *DocumentStore) AddRecentBlock(t blocks.Type) {
	next := make([]blocks.Type, 0, len(s.recent)+1)
	next = append(next, t)
	for _, r := range s.recent {
		if r != t {
			next = append(next, r)
		}
	}
	if len(next) > s.maxRecent {
		next = next[:s.maxRecent]
	}
	s.recent = next
}

// RecentBlocks returns the recently-used block types, most recent first.
func (s *DocumentStore) RecentBlocks() []blocks.Type { return s.recent }

func snapshot(seq []*blocks.Block) []*blocks.Block {
	out := make([]*blocks.Block, len(seq))
	for i, b := range seq {
		out[i] = b.Clone()
	}
	return out
}

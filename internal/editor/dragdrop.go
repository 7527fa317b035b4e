package editor

import (
	"github.com/inkpress/core/internal/blocks"
)

// DragPayload identifies a drag source. A palette drag carries the block
// type to create; a canvas drag carries the id of an existing block.
type DragPayload struct {
	BlockID   string
	BlockType blocks.Type
}

// FromPalette reports whether the drag originates from the block palette.
func (p DragPayload) FromPalette() bool { return p.BlockType != "" }

// DragController translates abstract drag gestures into block creation and
// reordering against a DocumentStore. It is deliberately ignorant of
// pointer events: the UI layer maps its sensor callbacks onto
// DragStart/DragOver/DragEnd.
type DragController struct {
	store   *DocumentStore
	active  *DragPayload
	hoverID string
}

// NewDragController wires a controller to a store.
func NewDragController(store *DocumentStore) *DragController {
	return &DragController{store: store}
}

// DragStart begins a gesture.
func (c *DragController) DragStart(p DragPayload) {
	c.active = &p
	c.hoverID = ""
}

// DragOver records the block currently hovered as drop target.
func (c *DragController) DragOver(targetID string) {
	if c.active == nil {
		return
	}
	c.hoverID = targetID
}

// Dragging reports whether a gesture is active.
func (c *DragController) Dragging() bool { return c.active != nil }

// DragEnd completes the gesture. An empty targetID falls back to the last
// hovered block; if no target resolves the drop is a no-op and the
// pre-drag state stands.
//
// A palette drop creates a block of the carried type, appends it and
// records the type in the recency list. A canvas drop moves the dragged
// block to the target's position and renumbers the whole sequence before
// committing it.
func (c *DragController) DragEnd(targetID string) bool {
	payload := c.active
	hover := c.hoverID
	c.active = nil
	c.hoverID = ""
	if payload == nil {
		return false
	}
	if targetID == "" {
		targetID = hover
	}

	if payload.FromPalette() {
		b := blocks.New(payload.BlockType)
		if b == nil {
			return false
		}
		c.store.SaveToHistory()
		c.store.AddBlock(b)
		c.store.AddRecentBlock(payload.BlockType)
		return true
	}

	if targetID == "" || targetID == payload.BlockID {
		return false
	}

	seq := c.store.Blocks()
	oldIdx, newIdx := -1, -1
	for i, b := range seq {
		switch b.ID {
		case payload.BlockID:
			oldIdx = i
		case targetID:
			newIdx = i
		}
	}
	if oldIdx < 0 || newIdx < 0 || oldIdx == newIdx {
		return false
	}

	c.store.SaveToHistory()
	c.store.UpdateBlockOrder(move(seq, oldIdx, newIdx))
	return true
}

// move returns a new sequence with the element at from reinserted at to,
// preserving the relative order of everything else, with Order renumbered
// to match each element's new index.
func move(seq []*blocks.Block, from, to int) []*blocks.Block {
	out := make([]*blocks.Block, 0, len(seq))
	out = append(out, seq[:from]...)
	out = append(out, seq[from+1:]...)

	moved := seq[from]
	out = append(out[:to], append([]*blocks.Block{moved}, out[to:]...)...)

	blocks.Normalize(out)
	return out
}

package editor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpress/core/internal/blocks"
	"github.com/inkpress/core/internal/editor"
)

func TestDragEnd_PaletteDropCreatesBlock(t *testing.T) {
	s := newDoc(t, blocks.TypeHeading)
	c := editor.NewDragController(s)

	c.DragStart(editor.DragPayload{BlockType: blocks.TypeQuote})
	assert.True(t, c.Dragging())
	require.True(t, c.DragEnd(""))
	assert.False(t, c.Dragging())

	require.Equal(t, 2, s.Len())
	added := s.Blocks()[1]
	assert.Equal(t, blocks.TypeQuote, added.Type)
	assert.Equal(t, 1, added.Order)
	assert.Equal(t, []blocks.Type{blocks.TypeQuote}, s.RecentBlocks())
	assert.True(t, s.CanUndo(), "a palette drop is undoable")
}

func TestDragEnd_PaletteDropUnknownType(t *testing.T) {
	s := newDoc(t)
	c := editor.NewDragController(s)

	c.DragStart(editor.DragPayload{BlockType: blocks.Type("widget")})
	assert.False(t, c.DragEnd(""))
	assert.Zero(t, s.Len())
	assert.False(t, s.CanUndo())
}

func TestDragEnd_CanvasReorder(t *testing.T) {
	s := newDoc(t, blocks.TypeHeading, blocks.TypeParagraph, blocks.TypeQuote, blocks.TypeDivider)
	before := ids(s)
	c := editor.NewDragController(s)

	// Drag the first block onto the third.
	c.DragStart(editor.DragPayload{BlockID: before[0]})
	require.True(t, c.DragEnd(before[2]))

	assert.Equal(t, []string{before[1], before[2], before[0], before[3]}, ids(s))
	for i, b := range s.Blocks() {
		assert.Equal(t, i, b.Order)
	}

	require.True(t, s.Undo())
	assert.Equal(t, before, ids(s))
}

func TestDragEnd_FallsBackToHoverTarget(t *testing.T) {
	s := newDoc(t, blocks.TypeHeading, blocks.TypeParagraph)
	before := ids(s)
	c := editor.NewDragController(s)

	c.DragStart(editor.DragPayload{BlockID: before[1]})
	c.DragOver(before[0])
	require.True(t, c.DragEnd(""))

	assert.Equal(t, []string{before[1], before[0]}, ids(s))
}

func TestDragEnd_NoTargetIsNoOp(t *testing.T) {
	s := newDoc(t, blocks.TypeHeading, blocks.TypeParagraph)
	before := ids(s)
	c := editor.NewDragController(s)

	c.DragStart(editor.DragPayload{BlockID: before[0]})
	assert.False(t, c.DragEnd(""))
	assert.Equal(t, before, ids(s))
	assert.False(t, s.CanUndo(), "a cancelled drop must not pollute history")
}

func TestDragEnd_DropOnSelfIsNoOp(t *testing.T) {
	s := newDoc(t, blocks.TypeHeading, blocks.TypeParagraph)
	before := ids(s)
	c := editor.NewDragController(s)

	c.DragStart(editor.DragPayload{BlockID: before[0]})
	assert.False(t, c.DragEnd(before[0]))
	assert.Equal(t, before, ids(s))
}

func TestDragEnd_WithoutStart(t *testing.T) {
	s := newDoc(t, blocks.TypeHeading)
	c := editor.NewDragController(s)
	assert.False(t, c.DragEnd(s.Blocks()[0].ID))
}

func TestDragOver_IgnoredWhenNotDragging(t *testing.T) {
	s := newDoc(t, blocks.TypeHeading, blocks.TypeParagraph)
	c := editor.NewDragController(s)

	c.DragOver(s.Blocks()[0].ID)
	c.DragStart(editor.DragPayload{BlockID: s.Blocks()[1].ID})
	assert.False(t, c.DragEnd(""), "hover recorded before the gesture must not count")
}

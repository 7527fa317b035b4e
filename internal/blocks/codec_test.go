package blocks_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/inkpress/core/internal/blocks"
)

func TestUnmarshalJSON_SelectsVariant(t *testing.T) {
	raw := `{"id":"b1","type":"heading","order":0,"data":{"level":2,"content":"Title","alignment":"center"}}`

	var b blocks.Block
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, blocks.TypeHeading, b.Type)
	hd, ok := b.Data.(*blocks.HeadingData)
	require.True(t, ok)
	assert.Equal(t, 2, hd.Level)
	assert.Equal(t, "Title", hd.Content)
	assert.Equal(t, "center", hd.Alignment)
}

func TestUnmarshalJSON_UnknownType(t *testing.T) {
	raw := `{"id":"b1","type":"carousel","order":0,"data":{}}`

	var b blocks.Block
	err := json.Unmarshal([]byte(raw), &b)
	require.Error(t, err)
	assert.ErrorIs(t, err, blocks.ErrUnknownType)
}

func TestUnmarshalJSON_EmptyListPayload(t *testing.T) {
	raw := `{"id":"b1","type":"list","order":0,"data":{"items":[],"type":"bullet"}}`

	var b blocks.Block
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	assert.Equal(t, []string{""}, b.Data.(*blocks.ListData).Items)
}

func TestSequenceRoundTrip(t *testing.T) {
	h := blocks.New(blocks.TypeHeading)
	h.Data.Merge(map[string]any{"content": "Feature Story", "level": 2})
	q := blocks.New(blocks.TypeQuote)
	q.Data.Merge(map[string]any{"content": "said so", "attribution": "Someone"})
	seq := []*blocks.Block{h, q}
	blocks.Normalize(seq)

	content, err := blocks.MarshalSequence(seq)
	require.NoError(t, err)

	got := blocks.ParseSequence(content, zaptest.NewLogger(t))
	require.Len(t, got, 2)
	assert.Equal(t, h.ID, got[0].ID)
	assert.Equal(t, "Feature Story", got[0].Data.(*blocks.HeadingData).Content)
	assert.Equal(t, "Someone", got[1].Data.(*blocks.QuoteData).Attribution)
}

func TestParseSequence_MalformedDocument(t *testing.T) {
	assert.Empty(t, blocks.ParseSequence("", zaptest.NewLogger(t)))
	assert.Empty(t, blocks.ParseSequence("not json", zaptest.NewLogger(t)))
	assert.Empty(t, blocks.ParseSequence(`{"oops":true}`, zaptest.NewLogger(t)))
}

func TestParseSequence_SkipsBadBlocks(t *testing.T) {
	content := `[
		{"id":"ok1","type":"paragraph","order":0,"data":{"content":"keep me"}},
		{"id":"bad","type":"hologram","order":1,"data":{}},
		{"id":"ok2","type":"divider","order":2,"data":{}}
	]`

	got := blocks.ParseSequence(content, zaptest.NewLogger(t))
	require.Len(t, got, 2)
	assert.Equal(t, "ok1", got[0].ID)
	assert.Equal(t, "ok2", got[1].ID)
}

func TestMarshalSequence_NilIsEmptyArray(t *testing.T) {
	content, err := blocks.MarshalSequence(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", content)
}

package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/inkpress/core/internal/blocks"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/modules/render"
)

func block(t *testing.T, typ blocks.Type, patch map[string]any) *blocks.Block {
	t.Helper()
	b := blocks.New(typ)
	require.NotNil(t, b)
	if patch != nil {
		b.Data.Merge(patch)
	}
	return b
}

func TestHTML_AllVariants(t *testing.T) {
	r := render.New("https://inkpress.example", zaptest.NewLogger(t))

	seq := []*blocks.Block{
		block(t, blocks.TypeHeading, map[string]any{"level": 2, "content": "City Gardens", "alignment": "center"}),
		block(t, blocks.TypeParagraph, map[string]any{"content": "Rooftops are **green** now."}),
		block(t, blocks.TypeImage, map[string]any{"url": "https://cdn.example/x.jpg", "alt": "roof", "caption": "A roof", "credit": "Jo"}),
		block(t, blocks.TypeQuote, map[string]any{"content": "Grow up, not out.", "attribution": "The Mayor"}),
		block(t, blocks.TypeList, map[string]any{"items": []any{"soil", "seeds"}, "type": "numbered"}),
		block(t, blocks.TypeDivider, map[string]any{"style": "dots"}),
	}
	blocks.Normalize(seq)

	out := r.HTML(seq)

	assert.Contains(t, out, `<h2 style="text-align:center;">City Gardens</h2>`)
	assert.Contains(t, out, "<strong>green</strong>")
	assert.Contains(t, out, `<img src="https://cdn.example/x.jpg" alt="roof">`)
	assert.Contains(t, out, "<figcaption>A roof<cite>Jo</cite></figcaption>")
	assert.Contains(t, out, "<blockquote>")
	assert.Contains(t, out, "<cite>The Mayor</cite>")
	assert.Contains(t, out, "<ol><li>soil</li><li>seeds</li></ol>")
	assert.Contains(t, out, `<hr class="divider-dots">`)
}

func TestHTML_EscapesContent(t *testing.T) {
	r := render.New("https://inkpress.example", zaptest.NewLogger(t))
	seq := []*blocks.Block{
		block(t, blocks.TypeHeading, map[string]any{"content": `<script>alert("x")</script>`}),
	}

	out := r.HTML(seq)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestHTML_SkipsCorruptBlock(t *testing.T) {
	r := render.New("https://inkpress.example", zaptest.NewLogger(t))

	good := block(t, blocks.TypeParagraph, map[string]any{"content": "still here"})
	corrupt := blocks.New(blocks.TypeHeading)
	corrupt.Data = nil

	out := r.HTML([]*blocks.Block{corrupt, good})
	assert.Contains(t, out, "still here")
}

func TestSEO_ExplicitFields(t *testing.T) {
	r := render.New("https://inkpress.example/", zaptest.NewLogger(t))
	published := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	article := &models.ArticleModel{
		Title:       "City Gardens",
		Slug:        "city-gardens",
		Summary:     "Rooftop farming in dense cities.",
		CoverImage:  "https://cdn.example/cover.jpg",
		PublishedAt: &published,
		Author:      &models.UserModel{Name: "Sam Reyes"},
	}

	meta := r.SEO(article, nil)
	assert.Equal(t, "City Gardens", meta.Title)
	assert.Equal(t, "Rooftop farming in dense cities.", meta.Description)
	assert.Equal(t, "https://inkpress.example/articles/city-gardens", meta.Canonical)
	assert.Equal(t, "https://cdn.example/cover.jpg", meta.Image)
	assert.Equal(t, "2026-03-14T09:30:00Z", meta.PublishedAt)
	assert.Equal(t, "Sam Reyes", meta.Author)
}

func TestSEO_FallsBackToContent(t *testing.T) {
	r := render.New("https://inkpress.example", zaptest.NewLogger(t))
	article := &models.ArticleModel{Title: "Untitled", Slug: "untitled"}

	long := strings.Repeat("words and more ", 20)
	seq := []*blocks.Block{
		block(t, blocks.TypeDivider, nil),
		block(t, blocks.TypeParagraph, map[string]any{"content": long}),
		block(t, blocks.TypeImage, map[string]any{"url": "https://cdn.example/first.jpg"}),
		block(t, blocks.TypeImage, map[string]any{"url": "https://cdn.example/second.jpg"}),
	}

	meta := r.SEO(article, seq)
	assert.NotEmpty(t, meta.Description)
	assert.LessOrEqual(t, len([]rune(meta.Description)), 160)
	assert.Equal(t, "https://cdn.example/first.jpg", meta.Image,
		"the first image in the sequence backs the og image")
}

// Package render turns a block sequence into public HTML plus the SEO
// metadata the article page carries. Markdown-bearing blocks (paragraph,
// quote) go through goldmark; everything else maps to plain markup.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/inkpress/core/internal/blocks"
	"github.com/inkpress/core/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Strikethrough,
		extension.Linkify,
		extension.Typographer,
	),
)

// SEOMeta is the head-metadata block for a published article page.
type SEOMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Canonical   string `json:"canonical"`
	Image       string `json:"image,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	Author      string `json:"author,omitempty"`
}

// Renderer renders articles for the public site.
type Renderer struct {
	siteURL string
	logger  *zap.Logger
}

// New builds a renderer. siteURL is the canonical origin, no trailing slash.
func New(siteURL string, logger *zap.Logger) *Renderer {
	return &Renderer{siteURL: strings.TrimRight(siteURL, "/"), logger: logger}
}

// HTML renders the block sequence. A block whose payload does not match
// its tag is a data-integrity problem: it is logged and skipped, the rest
// of the article still renders.
func (r *Renderer) HTML(seq []*blocks.Block) string {
	v := &htmlVisitor{}
	for _, b := range seq {
		if err := b.Accept(v); err != nil {
			if r.logger != nil {
				r.logger.Warn("skipping corrupt block", zap.String("block", b.ID), zap.Error(err))
			}
		}
	}
	return v.buf.String()
}

// SEO assembles the article's head metadata.
func (r *Renderer) SEO(article *models.ArticleModel, seq []*blocks.Block) SEOMeta {
	meta := SEOMeta{
		Title:       article.Title,
		Description: article.Summary,
		Canonical:   r.siteURL + "/articles/" + article.Slug,
		Image:       article.CoverImage,
	}
	if article.PublishedAt != nil {
		meta.PublishedAt = article.PublishedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	if article.Author != nil {
		meta.Author = article.Author.Name
	}

	// Fall back to article content for the bits the author left blank.
	for _, b := range seq {
		if meta.Description == "" {
			if d, ok := b.Data.(*blocks.ParagraphData); ok && d.Content != "" {
				meta.Description = truncate(d.Content, 160)
			}
		}
		if meta.Image == "" {
			if d, ok := b.Data.(*blocks.ImageData); ok && d.URL != "" {
				meta.Image = d.URL
			}
		}
	}
	return meta
}

type htmlVisitor struct {
	buf bytes.Buffer
}

func (v *htmlVisitor) VisitHeading(b *blocks.Block, d *blocks.HeadingData) error {
	level := d.Level
	if level < 1 || level > 6 {
		level = 2
	}
	style := alignStyle(d.Alignment)
	if d.Color != "" {
		style += "color:" + html.EscapeString(d.Color) + ";"
	}
	fmt.Fprintf(&v.buf, "<h%d%s>%s</h%d>\n", level, styleAttr(style), html.EscapeString(d.Content), level)
	return nil
}

func (v *htmlVisitor) VisitParagraph(b *blocks.Block, d *blocks.ParagraphData) error {
	var md bytes.Buffer
	if err := markdownEngine.Convert([]byte(d.Content), &md); err != nil {
		return err
	}
	fmt.Fprintf(&v.buf, "<div class=\"paragraph\"%s>%s</div>\n", styleAttr(alignStyle(d.Alignment)), md.String())
	return nil
}

func (v *htmlVisitor) VisitImage(b *blocks.Block, d *blocks.ImageData) error {
	classes := "figure layout-" + d.Layout
	if d.Border {
		classes += " bordered"
	}
	if d.Shadow {
		classes += " shadowed"
	}
	var width string
	if d.Width > 0 {
		width = fmt.Sprintf(" width=\"%d\"", d.Width)
	}
	fmt.Fprintf(&v.buf, "<figure class=%q><img src=%q alt=%q%s>",
		classes, d.URL, d.Alt, width)
	if d.Caption != "" || d.Credit != "" {
		v.buf.WriteString("<figcaption>" + html.EscapeString(d.Caption))
		if d.Credit != "" {
			v.buf.WriteString("<cite>" + html.EscapeString(d.Credit) + "</cite>")
		}
		v.buf.WriteString("</figcaption>")
	}
	v.buf.WriteString("</figure>\n")
	return nil
}

func (v *htmlVisitor) VisitQuote(b *blocks.Block, d *blocks.QuoteData) error {
	var md bytes.Buffer
	if err := markdownEngine.Convert([]byte(d.Content), &md); err != nil {
		return err
	}
	v.buf.WriteString("<blockquote>" + md.String())
	if d.Attribution != "" {
		v.buf.WriteString("<cite>" + html.EscapeString(d.Attribution) + "</cite>")
	}
	v.buf.WriteString("</blockquote>\n")
	return nil
}

func (v *htmlVisitor) VisitList(b *blocks.Block, d *blocks.ListData) error {
	tag := "ul"
	if d.Style == blocks.ListNumbered {
		tag = "ol"
	}
	v.buf.WriteString("<" + tag + ">")
	for _, item := range d.Items {
		v.buf.WriteString("<li>" + html.EscapeString(item) + "</li>")
	}
	v.buf.WriteString("</" + tag + ">\n")
	return nil
}

func (v *htmlVisitor) VisitDivider(b *blocks.Block, d *blocks.DividerData) error {
	if d.Style != "" {
		fmt.Fprintf(&v.buf, "<hr class=%q>\n", "divider-"+d.Style)
		return nil
	}
	v.buf.WriteString("<hr>\n")
	return nil
}

func alignStyle(alignment string) string {
	switch alignment {
	case "center", "right":
		return "text-align:" + alignment + ";"
	}
	return ""
}

func styleAttr(style string) string {
	if style == "" {
		return ""
	}
	return fmt.Sprintf(" style=%q", style)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

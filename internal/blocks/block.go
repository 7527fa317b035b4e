package blocks

import (
	"github.com/google/uuid"
)

// Type is the discriminant tag of a content block.
type Type string

const (
	TypeHeading   Type = "heading"
	TypeParagraph Type = "paragraph"
	TypeImage     Type = "image"
	TypeQuote     Type = "quote"
	TypeList      Type = "list"
	TypeDivider   Type = "divider"
)

// Types lists every known block type, palette order.
var Types = []Type{TypeHeading, TypeParagraph, TypeImage, TypeQuote, TypeList, TypeDivider}

// Valid reports whether t is a known block type.
func (t Type) Valid() bool {
	switch t {
	case TypeHeading, TypeParagraph, TypeImage, TypeQuote, TypeList, TypeDivider:
		return true
	}
	return false
}

// Data is the variant-specific payload of a block.
type Data interface {
	// Kind returns the type tag this payload belongs to.
	Kind() Type
	// Clone returns a deep copy of the payload.
	Clone() Data
	// Merge applies a partial field-keyed patch. Fields absent from the
	// patch are left untouched.
	Merge(patch map[string]any)
}

// Block is one unit of structured article content. Type is immutable after
// creation; Order is recomputed against the document sequence on reorder.
type Block struct {
	ID    string `json:"id"`
	Type  Type   `json:"type"`
	Order int    `json:"order"`
	Data  Data   `json:"data"`
}

// HeadingData is the payload of a heading block.
type HeadingData struct {
	Level     int    `json:"level"`
	Content   string `json:"content"`
	Alignment string `json:"alignment"`
	Color     string `json:"color,omitempty"`
}

func (d *HeadingData) Kind() Type  { return TypeHeading }
func (d *HeadingData) Clone() Data { c := *d; return &c }

func (d *HeadingData) Merge(patch map[string]any) {
	if v, ok := asInt(patch["level"]); ok && v >= 1 && v <= 6 {
		d.Level = v
	}
	if v, ok := patch["content"].(string); ok {
		d.Content = v
	}
	if v, ok := patch["alignment"].(string); ok {
		d.Alignment = v
	}
	if v, ok := patch["color"].(string); ok {
		d.Color = v
	}
}

// ParagraphData is the payload of a paragraph block. Content is markdown.
type ParagraphData struct {
	Content   string `json:"content"`
	Alignment string `json:"alignment"`
}

func (d *ParagraphData) Kind() Type  { return TypeParagraph }
func (d *ParagraphData) Clone() Data { c := *d; return &c }

func (d *ParagraphData) Merge(patch map[string]any) {
	if v, ok := patch["content"].(string); ok {
		d.Content = v
	}
	if v, ok := patch["alignment"].(string); ok {
		d.Alignment = v
	}
}

// ImageData is the payload of an image block. The URL is opaque to the
// editor; how it was obtained (media library, external) does not matter here.
type ImageData struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption,omitempty"`
	Credit  string `json:"credit,omitempty"`
	Layout  string `json:"layout"`
	Width   int    `json:"width,omitempty"`
	Border  bool   `json:"border"`
	Shadow  bool   `json:"shadow"`
}

func (d *ImageData) Kind() Type  { return TypeImage }
func (d *ImageData) Clone() Data { c := *d; return &c }

func (d *ImageData) Merge(patch map[string]any) {
	if v, ok := patch["url"].(string); ok {
		d.URL = v
	}
	if v, ok := patch["alt"].(string); ok {
		d.Alt = v
	}
	if v, ok := patch["caption"].(string); ok {
		d.Caption = v
	}
	if v, ok := patch["credit"].(string); ok {
		d.Credit = v
	}
	if v, ok := patch["layout"].(string); ok {
		d.Layout = v
	}
	if v, ok := asInt(patch["width"]); ok {
		d.Width = v
	}
	if v, ok := patch["border"].(bool); ok {
		d.Border = v
	}
	if v, ok := patch["shadow"].(bool); ok {
		d.Shadow = v
	}
}

// QuoteData is the payload of a pull-quote block.
type QuoteData struct {
	Content     string `json:"content"`
	Attribution string `json:"attribution,omitempty"`
}

func (d *QuoteData) Kind() Type  { return TypeQuote }
func (d *QuoteData) Clone() Data { c := *d; return &c }

func (d *QuoteData) Merge(patch map[string]any) {
	if v, ok := patch["content"].(string); ok {
		d.Content = v
	}
	if v, ok := patch["attribution"].(string); ok {
		d.Attribution = v
	}
}

// ListStyle selects bullet or numbered rendering for a list block.
type ListStyle string

const (
	ListBullet   ListStyle = "bullet"
	ListNumbered ListStyle = "numbered"
)

// ListData is the payload of a list block. Items is never empty: removing
// the last item collapses it back to a single empty string.
type ListData struct {
	Items []string  `json:"items"`
	Style ListStyle `json:"type"`
}

func (d *ListData) Kind() Type { return TypeList }

func (d *ListData) Clone() Data {
	c := &ListData{Style: d.Style, Items: make([]string, len(d.Items))}
	copy(c.Items, d.Items)
	return c
}

func (d *ListData) Merge(patch map[string]any) {
	if v, ok := patch["items"]; ok {
		if items, ok := asStringSlice(v); ok {
			if len(items) == 0 {
				items = []string{""}
			}
			d.Items = items
		}
	}
	if v, ok := patch["type"].(string); ok {
		switch ListStyle(v) {
		case ListBullet, ListNumbered:
			d.Style = ListStyle(v)
		}
	}
}

// RemoveItem deletes the item at index i. Removing the last remaining item
// leaves a single empty string rather than an empty list.
func (d *ListData) RemoveItem(i int) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	if len(d.Items) == 0 {
		d.Items = []string{""}
	}
}

// DividerData is the payload of a divider block.
type DividerData struct {
	Style string `json:"style,omitempty"`
}

func (d *DividerData) Kind() Type  { return TypeDivider }
func (d *DividerData) Clone() Data { c := *d; return &c }

func (d *DividerData) Merge(patch map[string]any) {
	if v, ok := patch["style"].(string); ok {
		d.Style = v
	}
}

// New creates a block of the given type with type-correct default payload
// values and a fresh id. Returns nil for an unknown type.
func New(t Type) *Block {
	data := defaultData(t)
	if data == nil {
		return nil
	}
	return &Block{
		ID:   uuid.New().String(),
		Type: t,
		Data: data,
	}
}

func defaultData(t Type) Data {
	switch t {
	case TypeHeading:
		return &HeadingData{Level: 1, Alignment: "left"}
	case TypeParagraph:
		return &ParagraphData{Alignment: "left"}
	case TypeImage:
		return &ImageData{Layout: "full"}
	case TypeQuote:
		return &QuoteData{}
	case TypeList:
		return &ListData{Items: []string{""}, Style: ListBullet}
	case TypeDivider:
		return &DividerData{}
	}
	return nil
}

// Duplicate returns a copy of b with a fresh id, a deep copy of the payload
// and order set one past the original. The caller renumbers the sequence
// afterwards.
func (b *Block) Duplicate() *Block {
	return &Block{
		ID:    uuid.New().String(),
		Type:  b.Type,
		Order: b.Order + 1,
		Data:  b.Data.Clone(),
	}
}

// Clone returns a deep copy of b keeping its id.
func (b *Block) Clone() *Block {
	c := *b
	c.Data = b.Data.Clone()
	return &c
}

// Normalize renumbers every block's Order to match its index in seq.
func Normalize(seq []*Block) {
	for i, b := range seq {
		b.Order = i
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64: // JSON numbers decode as float64
		return int(n), true
	}
	return 0, false
}

func asStringSlice(v any) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		out := make([]string, len(items))
		copy(out, items)
		return out, true
	case []any:
		out := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

package blocks

import "fmt"

// Visitor dispatches over the closed set of block variants. Adding a new
// block type extends this interface, so every consumer is forced to handle it.
type Visitor interface {
	VisitHeading(b *Block, d *HeadingData) error
	VisitParagraph(b *Block, d *ParagraphData) error
	VisitImage(b *Block, d *ImageData) error
	VisitQuote(b *Block, d *QuoteData) error
	VisitList(b *Block, d *ListData) error
	VisitDivider(b *Block, d *DividerData) error
}

// Accept dispatches b to the matching visitor method. A payload that does
// not match the type tag is a data-integrity error, not a silent fallthrough.
func (b *Block) Accept(v Visitor) error {
	switch d := b.Data.(type) {
	case *HeadingData:
		return v.VisitHeading(b, d)
	case *ParagraphData:
		return v.VisitParagraph(b, d)
	case *ImageData:
		return v.VisitImage(b, d)
	case *QuoteData:
		return v.VisitQuote(b, d)
	case *ListData:
		return v.VisitList(b, d)
	case *DividerData:
		return v.VisitDivider(b, d)
	}
	return fmt.Errorf("block %s: payload %T does not match any known variant", b.ID, b.Data)
}

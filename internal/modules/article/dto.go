package article

import "github.com/inkpress/core/internal/models"

// CreateArticleDTO is the payload for creating a draft.
type CreateArticleDTO struct {
	Title      string             `json:"title"   binding:"required"`
	Slug       string             `json:"slug"    binding:"required"`
	Summary    string             `json:"summary"`
	Content    string             `json:"content"`
	CoverImage string             `json:"cover_image"`
	CategoryID *string            `json:"category_id"`
	Tags       models.StringSlice `json:"tags"`
}

// UpdateArticleDTO is the payload for a partial article update. Pointer
// fields distinguish "absent" from zero values.
type UpdateArticleDTO struct {
	Title      *string            `json:"title"`
	Slug       *string            `json:"slug"`
	Summary    *string            `json:"summary"`
	CoverImage *string            `json:"cover_image"`
	CategoryID *string            `json:"category_id"`
	Tags       models.StringSlice `json:"tags"`
}

// Fields converts the DTO into the partial field map Update expects.
func (d *UpdateArticleDTO) Fields() map[string]any {
	fields := map[string]any{}
	if d.Title != nil {
		fields["title"] = *d.Title
	}
	if d.Slug != nil {
		fields["slug"] = *d.Slug
	}
	if d.Summary != nil {
		fields["summary"] = *d.Summary
	}
	if d.CoverImage != nil {
		fields["cover_image"] = *d.CoverImage
	}
	if d.CategoryID != nil {
		fields["category_id"] = *d.CategoryID
	}
	if d.Tags != nil {
		fields["tags"] = d.Tags
	}
	return fields
}

// ReviewDTO carries reviewer feedback for approve/reject.
type ReviewDTO struct {
	Feedback string `json:"feedback"`
}

// BulkDTO is a single bulk request carrying the full id set and action.
type BulkDTO struct {
	Action     string   `json:"action"      binding:"required"`
	IDs        []string `json:"ids"         binding:"required"`
	CategoryID *string  `json:"category_id"`
}

// SaveBlocksDTO carries the serialized block sequence from the editor.
type SaveBlocksDTO struct {
	Content string `json:"content" binding:"required"`
}

package models

import "time"

// ArticleStatus is the editorial lifecycle state of an article.
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "DRAFT"
	StatusSubmitted ArticleStatus = "SUBMITTED"
	StatusApproved  ArticleStatus = "APPROVED"
	StatusPublished ArticleStatus = "PUBLISHED"
	StatusRejected  ArticleStatus = "REJECTED"
	StatusArchived  ArticleStatus = "ARCHIVED"
)

// ArticleModel is a magazine article. Content holds the serialized block
// sequence as a JSON array (see internal/blocks).
type ArticleModel struct {
	Base
	Title          string         `json:"title"           gorm:"not null"`
	Slug           string         `json:"slug"            gorm:"uniqueIndex;not null"`
	Summary        string         `json:"summary"`
	Content        string         `json:"content"         gorm:"type:longtext"`
	CoverImage     string         `json:"cover_image"`
	Status         ArticleStatus  `json:"status"          gorm:"type:varchar(16);default:'DRAFT';index"`
	AuthorID       string         `json:"author_id"       gorm:"index;not null"`
	Author         *UserModel     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	CategoryID     *string        `json:"category_id"     gorm:"index"`
	Category       *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Tags           StringSlice    `json:"tags"            gorm:"type:json;serializer:json"`
	ReviewedBy     *string        `json:"reviewed_by"`
	ReviewedAt     *time.Time     `json:"reviewed_at"`
	ReviewFeedback string         `json:"review_feedback" gorm:"type:text"`
	PublishedAt    *time.Time     `json:"published_at"`
	ViewCount      int            `json:"views"           gorm:"column:view_count;default:0"`
	CommentsIndex  int            `json:"comments_index"  gorm:"default:0"`
	AllowComment   bool           `json:"allow_comment"   gorm:"default:true"`
}

func (ArticleModel) TableName() string { return "articles" }

// IsPublished reports whether the article is publicly visible.
func (a ArticleModel) IsPublished() bool { return a.Status == StatusPublished }

// EditableBy reports whether userID may modify the article: its author,
// or anyone holding the editor role and above.
func (a ArticleModel) EditableBy(userID string, role Role) bool {
	return a.AuthorID == userID || role.AtLeast(RoleEditor)
}

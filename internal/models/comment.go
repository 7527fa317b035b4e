package models

// CommentState represents the moderation state of a comment.
type CommentState int

const (
	CommentPending  CommentState = 0
	CommentApproved CommentState = 1
	CommentJunk     CommentState = 2
)

// CommentModel represents a reader comment on an article.
type CommentModel struct {
	Base
	ArticleID string         `json:"article_id" gorm:"not null;index"`
	Author    string         `json:"author"     gorm:"not null"`
	Mail      string         `json:"mail"`
	URL       string         `json:"url"`
	Text      string         `json:"text"       gorm:"type:text;not null"`
	State     CommentState   `json:"state"      gorm:"default:0;index"`
	ParentID  *string        `json:"parent_id"  gorm:"index"`
	Children  []CommentModel `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Key       string         `json:"key"`
	IP        string         `json:"ip"`
	Agent     string         `json:"agent"      gorm:"type:varchar(512)"`
	FlagCount int            `json:"flag_count" gorm:"default:0"`
}

func (CommentModel) TableName() string { return "comments" }

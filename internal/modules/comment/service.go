package comment

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/apperror"
	"github.com/inkpress/core/internal/pkg/pagination"
	"github.com/inkpress/core/internal/pkg/response"
	"gorm.io/gorm"
)

// flagThreshold auto-junks a comment once enough readers flag it; an
// editor can still rescue it from the moderation queue.
const flagThreshold = 5

// CreateCommentDTO is the payload for posting a comment.
type CreateCommentDTO struct {
	ArticleID string  `json:"article_id" binding:"required"`
	Author    string  `json:"author"     binding:"required"`
	Mail      string  `json:"mail"`
	URL       string  `json:"url"`
	Text      string  `json:"text"       binding:"required"`
	ParentID  *string `json:"parent_id"`
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// List returns comments, optionally filtered by article and moderation state.
func (s *Service) List(q pagination.Query, articleID *string, state *models.CommentState) ([]models.CommentModel, response.Pagination, error) {
	tx := s.db.Model(&models.CommentModel{}).Order("created_at DESC")
	if articleID != nil {
		tx = tx.Where("article_id = ?", *articleID)
	}
	if state != nil {
		tx = tx.Where("state = ?", *state)
	}

	var comments []models.CommentModel
	pag, err := pagination.Paginate(tx, q, &comments)
	return comments, pag, err
}

// ListPublic returns approved comments for one published article.
func (s *Service) ListPublic(articleID string) ([]models.CommentModel, error) {
	var comments []models.CommentModel
	err := s.db.
		Where("article_id = ? AND state = ? AND parent_id IS NULL", articleID, models.CommentApproved).
		Preload("Children", "state = ?", models.CommentApproved).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// Create posts a comment on a published, comment-enabled article. New
// comments enter the moderation queue as pending.
func (s *Service) Create(ctx context.Context, dto *CreateCommentDTO, ip, agent string) (*models.CommentModel, error) {
	var article models.ArticleModel
	err := s.db.WithContext(ctx).First(&article, "id = ?", dto.ArticleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("article", dto.ArticleID)
		}
		return nil, err
	}
	if !article.IsPublished() {
		return nil, apperror.Validation("article_id", "comments are only accepted on published articles")
	}
	if !article.AllowComment {
		return nil, apperror.Validation("article_id", "comments are disabled on this article")
	}

	c := models.CommentModel{
		ArticleID: dto.ArticleID,
		Author:    dto.Author,
		Mail:      dto.Mail,
		URL:       dto.URL,
		Text:      dto.Text,
		ParentID:  dto.ParentID,
		State:     models.CommentPending,
		IP:        ip,
		Agent:     agent,
		Key:       fmt.Sprintf("#%d", article.CommentsIndex+1),
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	s.db.WithContext(ctx).Model(&article).
		UpdateColumn("comments_index", gorm.Expr("comments_index + 1"))
	return &c, nil
}

// SetState moves a comment between moderation states.
func (s *Service) SetState(ctx context.Context, id string, state models.CommentState) (*models.CommentModel, error) {
	var c models.CommentModel
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&c).Update("state", state).Error; err != nil {
		return nil, err
	}
	c.State = state
	return &c, nil
}

// Flag increments a comment's flag counter; crossing the threshold junks
// it automatically.
func (s *Service) Flag(ctx context.Context, id string) error {
	tx := s.db.WithContext(ctx).Model(&models.CommentModel{}).Where("id = ?", id).
		UpdateColumn("flag_count", gorm.Expr("flag_count + 1"))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}

	return s.db.WithContext(ctx).Model(&models.CommentModel{}).
		Where("id = ? AND flag_count >= ? AND state <> ?", id, flagThreshold, models.CommentJunk).
		Update("state", models.CommentJunk).Error
}

// Delete removes a comment and its replies.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.db.WithContext(ctx).Where("parent_id = ?", id).Delete(&models.CommentModel{})
	return s.db.WithContext(ctx).Delete(&models.CommentModel{}, "id = ?", id).Error
}

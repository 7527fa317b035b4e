package article

import (
	"context"
	"errors"
	"fmt"

	"github.com/inkpress/core/internal/blocks"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/apperror"
	"github.com/inkpress/core/internal/pkg/cache"
	"github.com/inkpress/core/internal/pkg/pagination"
	"github.com/inkpress/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles article persistence. It is the store collaborator the
// workflow machine and the editor autosave write through.
type Service struct {
	db     *gorm.DB
	cache  *cache.ArticleCache
	logger *zap.Logger
}

func NewService(db *gorm.DB, c *cache.ArticleCache, logger *zap.Logger) *Service {
	return &Service{db: db, cache: c, logger: logger}
}

// ListQuery filters the article list.
type ListQuery struct {
	Status   *models.ArticleStatus
	Category *string
	Tag      *string
	AuthorID *string
}

// List returns a paginated, filtered article list, newest first.
func (s *Service) List(q pagination.Query, lq ListQuery) ([]models.ArticleModel, response.Pagination, error) {
	tx := s.db.Model(&models.ArticleModel{}).
		Preload("Category").
		Order("created_at DESC")

	if lq.Status != nil {
		tx = tx.Where("status = ?", *lq.Status)
	}
	if lq.Category != nil {
		tx = tx.Joins("JOIN categories ON categories.id = articles.category_id").
			Where("categories.slug = ?", *lq.Category)
	}
	if lq.Tag != nil {
		tx = tx.Where("JSON_CONTAINS(tags, ?)", fmt.Sprintf("%q", *lq.Tag))
	}
	if lq.AuthorID != nil {
		tx = tx.Where("author_id = ?", *lq.AuthorID)
	}

	var articles []models.ArticleModel
	pag, err := pagination.Paginate(tx, q, &articles)
	return articles, pag, err
}

// GetByID fetches a single article by ID. Returns (nil, nil) when absent.
func (s *Service) GetByID(ctx context.Context, id string) (*models.ArticleModel, error) {
	var article models.ArticleModel
	err := s.db.WithContext(ctx).Preload("Category").First(&article, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

// GetBySlug fetches an article by slug, optionally bumping the view
// counter. Published lookups go through the cache first.
func (s *Service) GetBySlug(ctx context.Context, slug string, incrementView bool) (*models.ArticleModel, error) {
	if cached := s.cache.GetBySlug(ctx, slug); cached != nil {
		if incrementView {
			s.incrementViewCount(ctx, cached.ID)
		}
		return cached, nil
	}

	var article models.ArticleModel
	err := s.db.WithContext(ctx).Preload("Category").Preload("Author").
		First(&article, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if article.IsPublished() {
		s.cache.SetBySlug(ctx, &article)
	}
	if incrementView {
		s.incrementViewCount(ctx, article.ID)
	}
	return &article, nil
}

// Create inserts a new draft owned by its author.
func (s *Service) Create(ctx context.Context, authorID string, dto *CreateArticleDTO) (*models.ArticleModel, error) {
	var count int64
	s.db.WithContext(ctx).Model(&models.ArticleModel{}).Where("slug = ?", dto.Slug).Count(&count)
	if count > 0 {
		return nil, apperror.Conflict("slug already exists: " + dto.Slug)
	}

	article := models.ArticleModel{
		Title:        dto.Title,
		Slug:         dto.Slug,
		Summary:      dto.Summary,
		CoverImage:   dto.CoverImage,
		Status:       models.StatusDraft,
		AuthorID:     authorID,
		CategoryID:   dto.CategoryID,
		Tags:         dto.Tags,
		AllowComment: true,
	}
	if dto.Content != "" {
		// Round-trip through the codec so malformed content never lands
		// in the column.
		seq := blocks.ParseSequence(dto.Content, s.logger)
		raw, err := blocks.MarshalSequence(seq)
		if err != nil {
			return nil, err
		}
		article.Content = raw
	}

	if err := s.db.WithContext(ctx).Create(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// Update applies a partial field map to an article. Implements
// workflow.Store. A slug change colliding with a different article fails
// with a conflict.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) error {
	if slug, ok := fields["slug"].(string); ok {
		var count int64
		s.db.WithContext(ctx).Model(&models.ArticleModel{}).
			Where("slug = ? AND id <> ?", slug, id).Count(&count)
		if count > 0 {
			return apperror.Conflict("slug already exists: " + slug)
		}
	}

	tx := s.db.WithContext(ctx).Model(&models.ArticleModel{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		// MySQL reports changed rows, not matched rows, so a no-op
		// update also lands here. Only a missing row is an error.
		var count int64
		s.db.WithContext(ctx).Model(&models.ArticleModel{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return apperror.NotFound("article", id)
		}
	}
	return nil
}

// UpdateBlocks replaces the serialized block sequence of an article. This
// is the autosave sink.
func (s *Service) UpdateBlocks(ctx context.Context, id string, content string) error {
	// Validate before writing: whatever lands in the column must parse.
	seq := blocks.ParseSequence(content, s.logger)
	raw, err := blocks.MarshalSequence(seq)
	if err != nil {
		return err
	}
	return s.Update(ctx, id, map[string]any{"content": raw})
}

// Blocks loads and decodes the article's block sequence for editing or
// rendering. Malformed content degrades to an empty document.
func (s *Service) Blocks(ctx context.Context, id string) ([]*blocks.Block, error) {
	article, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperror.NotFound("article", id)
	}
	return blocks.ParseSequence(article.Content, s.logger), nil
}

// Delete hard-deletes an article and its comments, and drops every derived
// cache entry. Implements workflow.Store.
func (s *Service) Delete(ctx context.Context, id string) error {
	article, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if article == nil {
		return apperror.NotFound("article", id)
	}

	if err := s.db.WithContext(ctx).Unscoped().
		Where("article_id = ?", id).Delete(&models.CommentModel{}).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Unscoped().
		Delete(&models.ArticleModel{}, "id = ?", id).Error; err != nil {
		return err
	}

	s.cache.InvalidateArticle(ctx, article)
	return nil
}

func (s *Service) incrementViewCount(ctx context.Context, id string) {
	err := s.db.WithContext(ctx).Model(&models.ArticleModel{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil && s.logger != nil {
		s.logger.Warn("view count increment failed",
			zap.String("article", id), zap.Error(err))
	}
}

// Package workflow implements the editorial lifecycle of an article:
// DRAFT → SUBMITTED → APPROVED → PUBLISHED, with REJECTED as the review
// dead end and ARCHIVED as the only unpublish target. Every transition
// validates the current status and the acting user before touching the
// store, so a refused transition never leaves a partial write.
package workflow

import (
	"context"
	"time"

	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/apperror"
	"go.uber.org/zap"
)

// Actor is the user requesting a transition.
type Actor struct {
	ID   string
	Role models.Role
}

// Store is the persistence collaborator. Update applies a partial field
// map to one article.
type Store interface {
	GetByID(ctx context.Context, id string) (*models.ArticleModel, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Invalidator drops cached derivations of an article. Failures are
// fail-open: logged, never surfaced, never blocking the transition.
type Invalidator interface {
	InvalidateArticle(ctx context.Context, article *models.ArticleModel)
}

// Machine executes workflow transitions against the store.
type Machine struct {
	store  Store
	cache  Invalidator
	logger *zap.Logger
	now    func() time.Time
}

// NewMachine builds a workflow machine. cache may be nil.
func NewMachine(store Store, cache Invalidator, logger *zap.Logger) *Machine {
	return &Machine{store: store, cache: cache, logger: logger, now: time.Now}
}

// SubmitForReview moves the author's draft into the review queue.
func (m *Machine) SubmitForReview(ctx context.Context, actor Actor, id string) (*models.ArticleModel, error) {
	article, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != actor.ID {
		return nil, apperror.Authorization("article ownership: only the author may submit for review")
	}
	if article.Status != models.StatusDraft {
		return nil, apperror.StateConflict("submit for review", string(article.Status), string(models.StatusDraft))
	}

	return m.apply(ctx, article, map[string]any{
		"status": models.StatusSubmitted,
	})
}

// Approve accepts a submitted article, recording the reviewer.
func (m *Machine) Approve(ctx context.Context, actor Actor, id, feedback string) (*models.ArticleModel, error) {
	article, err := m.loadForReview(ctx, actor, id, "approve")
	if err != nil {
		return nil, err
	}

	now := m.now()
	return m.apply(ctx, article, map[string]any{
		"status":          models.StatusApproved,
		"reviewed_by":     actor.ID,
		"reviewed_at":     now,
		"review_feedback": feedback,
	})
}

// Reject returns a submitted article to its author. Feedback is required:
// a rejection without a reason is useless to the writer.
func (m *Machine) Reject(ctx context.Context, actor Actor, id, feedback string) (*models.ArticleModel, error) {
	if feedback == "" {
		return nil, apperror.Validation("feedback", "rejection feedback is required")
	}
	article, err := m.loadForReview(ctx, actor, id, "reject")
	if err != nil {
		return nil, err
	}

	now := m.now()
	return m.apply(ctx, article, map[string]any{
		"status":          models.StatusRejected,
		"reviewed_by":     actor.ID,
		"reviewed_at":     now,
		"review_feedback": feedback,
	})
}

// Publish makes an approved article public. Re-publishing an already
// published article is an idempotent no-op transition; publishedAt is set
// exactly once and survives unpublish/republish cycles.
func (m *Machine) Publish(ctx context.Context, actor Actor, id string) (*models.ArticleModel, error) {
	article, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.AtLeast(models.RoleEditor) {
		return nil, apperror.Authorization(models.RoleEditor.String() + " role or higher")
	}
	if article.Status != models.StatusApproved && article.Status != models.StatusPublished {
		return nil, apperror.StateConflict("publish", string(article.Status), string(models.StatusApproved))
	}

	fields := map[string]any{"status": models.StatusPublished}
	if article.PublishedAt == nil {
		fields["published_at"] = m.now()
	}
	return m.apply(ctx, article, fields)
}

// Unpublish withdraws a published article. Archive is the only unpublish
// target; the article never silently reverts to DRAFT.
func (m *Machine) Unpublish(ctx context.Context, actor Actor, id string) (*models.ArticleModel, error) {
	article, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.AtLeast(models.RoleEditor) {
		return nil, apperror.Authorization(models.RoleEditor.String() + " role or higher")
	}
	if article.Status != models.StatusPublished {
		return nil, apperror.StateConflict("unpublish", string(article.Status), string(models.StatusPublished))
	}

	return m.apply(ctx, article, map[string]any{
		"status": models.StatusArchived,
	})
}

func (m *Machine) load(ctx context.Context, id string) (*models.ArticleModel, error) {
	article, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence("get article", err)
	}
	if article == nil {
		return nil, apperror.NotFound("article", id)
	}
	return article, nil
}

func (m *Machine) loadForReview(ctx context.Context, actor Actor, id, action string) (*models.ArticleModel, error) {
	article, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.AtLeast(models.RoleEditor) {
		return nil, apperror.Authorization(models.RoleEditor.String() + " role or higher")
	}
	if article.Status != models.StatusSubmitted {
		return nil, apperror.StateConflict(action, string(article.Status), string(models.StatusSubmitted))
	}
	return article, nil
}

// apply persists the field map, refreshes the in-memory entity and drops
// derived caches. Cache failures never fail the transition.
func (m *Machine) apply(ctx context.Context, article *models.ArticleModel, fields map[string]any) (*models.ArticleModel, error) {
	if err := m.store.Update(ctx, article.ID, fields); err != nil {
		return nil, apperror.Persistence("update article", err)
	}

	updated, err := m.store.GetByID(ctx, article.ID)
	if err != nil || updated == nil {
		// The write succeeded; fall back to patching the loaded copy.
		if m.logger != nil {
			m.logger.Warn("reload after transition failed, patching in memory",
				zap.String("article", article.ID), zap.Error(err))
		}
		patchEntity(article, fields)
		updated = article
	}

	if m.cache != nil {
		m.cache.InvalidateArticle(ctx, updated)
	}
	return updated, nil
}

func patchEntity(a *models.ArticleModel, fields map[string]any) {
	if v, ok := fields["status"].(models.ArticleStatus); ok {
		a.Status = v
	}
	if v, ok := fields["reviewed_by"].(string); ok {
		a.ReviewedBy = &v
	}
	if v, ok := fields["reviewed_at"].(time.Time); ok {
		a.ReviewedAt = &v
	}
	if v, ok := fields["review_feedback"].(string); ok {
		a.ReviewFeedback = v
	}
	if v, ok := fields["published_at"].(time.Time); ok {
		a.PublishedAt = &v
	}
}

package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/apperror"
	"github.com/inkpress/core/internal/workflow"
)

// fakeStore is an in-memory workflow.Store.
type fakeStore struct {
	articles  map[string]*models.ArticleModel
	failNext  error
	updates   int
	deletions []string
}

func newFakeStore(articles ...*models.ArticleModel) *fakeStore {
	s := &fakeStore{articles: map[string]*models.ArticleModel{}}
	for _, a := range articles {
		s.articles[a.ID] = a
	}
	return s
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*models.ArticleModel, error) {
	a, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	clone := *a
	return &clone, nil
}

func (s *fakeStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	a, ok := s.articles[id]
	if !ok {
		return errors.New("no such row")
	}
	s.updates++
	for k, v := range fields {
		switch k {
		case "status":
			a.Status = v.(models.ArticleStatus)
		case "reviewed_by":
			rv := v.(string)
			a.ReviewedBy = &rv
		case "reviewed_at":
			rv := v.(time.Time)
			a.ReviewedAt = &rv
		case "review_feedback":
			a.ReviewFeedback = v.(string)
		case "published_at":
			rv := v.(time.Time)
			a.PublishedAt = &rv
		case "category_id":
			rv := v.(string)
			a.CategoryID = &rv
		}
	}
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.articles[id]; !ok {
		return errors.New("no such row")
	}
	delete(s.articles, id)
	s.deletions = append(s.deletions, id)
	return nil
}

// countingInvalidator records cache invalidations.
type countingInvalidator struct {
	invalidated []string
}

func (c *countingInvalidator) InvalidateArticle(ctx context.Context, article *models.ArticleModel) {
	c.invalidated = append(c.invalidated, article.ID)
}

func draft(id, authorID string) *models.ArticleModel {
	a := &models.ArticleModel{
		Title:    "Feature",
		Slug:     "feature-" + id,
		Status:   models.StatusDraft,
		AuthorID: authorID,
	}
	a.ID = id
	return a
}

func withStatus(a *models.ArticleModel, st models.ArticleStatus) *models.ArticleModel {
	a.Status = st
	return a
}

var (
	author = workflow.Actor{ID: "u-writer", Role: models.RoleWriter}
	editor = workflow.Actor{ID: "u-editor", Role: models.RoleEditor}
)

func TestSubmitForReview(t *testing.T) {
	store := newFakeStore(draft("a1", author.ID))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	got, err := m.SubmitForReview(context.Background(), author, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, got.Status)
}

func TestSubmitForReview_NotTheAuthor(t *testing.T) {
	store := newFakeStore(draft("a1", author.ID))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	_, err := m.SubmitForReview(context.Background(), workflow.Actor{ID: "someone-else", Role: models.RoleWriter}, "a1")
	var authErr *apperror.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Zero(t, store.updates, "a refused transition must not write")
}

func TestSubmitForReview_WrongState(t *testing.T) {
	store := newFakeStore(withStatus(draft("a1", author.ID), models.StatusPublished))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	_, err := m.SubmitForReview(context.Background(), author, "a1")
	var confErr *apperror.StateConflictError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, string(models.StatusPublished), confErr.Current)
}

func TestApprove_RecordsReviewer(t *testing.T) {
	store := newFakeStore(withStatus(draft("a1", author.ID), models.StatusSubmitted))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	got, err := m.Approve(context.Background(), editor, "a1", "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, editor.ID, *got.ReviewedBy)
	assert.NotNil(t, got.ReviewedAt)
	assert.Equal(t, "looks good", got.ReviewFeedback)
}

func TestApprove_RequiresEditor(t *testing.T) {
	store := newFakeStore(withStatus(draft("a1", author.ID), models.StatusSubmitted))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	_, err := m.Approve(context.Background(), author, "a1", "")
	var authErr *apperror.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestReject_FeedbackRequired(t *testing.T) {
	store := newFakeStore(withStatus(draft("a1", author.ID), models.StatusSubmitted))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	_, err := m.Reject(context.Background(), editor, "a1", "")
	var valErr *apperror.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "feedback", valErr.Field)

	got, err := m.Reject(context.Background(), editor, "a1", "needs sources")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, "needs sources", got.ReviewFeedback)
}

func TestPublish_FromApproved(t *testing.T) {
	store := newFakeStore(withStatus(draft("a1", author.ID), models.StatusApproved))
	inv := &countingInvalidator{}
	m := workflow.NewMachine(store, inv, zaptest.NewLogger(t))

	got, err := m.Publish(context.Background(), editor, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
	assert.Equal(t, []string{"a1"}, inv.invalidated)
}

func TestPublish_FromDraftRefused(t *testing.T) {
	store := newFakeStore(draft("a1", author.ID))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	_, err := m.Publish(context.Background(), editor, "a1")
	var confErr *apperror.StateConflictError
	require.ErrorAs(t, err, &confErr)
	assert.Zero(t, store.updates)
}

func TestPublish_PublishedAtSetOnce(t *testing.T) {
	store := newFakeStore(withStatus(draft("a1", author.ID), models.StatusApproved))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	first, err := m.Publish(ctx, editor, "a1")
	require.NoError(t, err)
	require.NotNil(t, first.PublishedAt)
	original := *first.PublishedAt

	// Unpublish, re-approve by hand, publish again: the original
	// timestamp must survive the whole cycle.
	_, err = m.Unpublish(ctx, editor, "a1")
	require.NoError(t, err)
	store.articles["a1"].Status = models.StatusApproved

	time.Sleep(5 * time.Millisecond)
	second, err := m.Publish(ctx, editor, "a1")
	require.NoError(t, err)
	require.NotNil(t, second.PublishedAt)
	assert.True(t, second.PublishedAt.Equal(original), "published_at is set exactly once")
}

func TestPublish_Idempotent(t *testing.T) {
	store := newFakeStore(withStatus(draft("a1", author.ID), models.StatusApproved))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := m.Publish(ctx, editor, "a1")
	require.NoError(t, err)
	got, err := m.Publish(ctx, editor, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, got.Status)
}

func TestUnpublish_ArchivesOnly(t *testing.T) {
	a := withStatus(draft("a1", author.ID), models.StatusPublished)
	now := time.Now()
	a.PublishedAt = &now
	store := newFakeStore(a)
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	got, err := m.Unpublish(context.Background(), editor, "a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, got.Status)
	assert.NotNil(t, got.PublishedAt, "archiving does not erase the publish timestamp")
}

func TestUnpublish_NotPublished(t *testing.T) {
	store := newFakeStore(draft("a1", author.ID))
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	_, err := m.Unpublish(context.Background(), editor, "a1")
	var confErr *apperror.StateConflictError
	assert.ErrorAs(t, err, &confErr)
}

func TestTransition_ArticleMissing(t *testing.T) {
	m := workflow.NewMachine(newFakeStore(), nil, zaptest.NewLogger(t))

	_, err := m.Publish(context.Background(), editor, "ghost")
	var nfErr *apperror.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestTransition_StoreFailureSurfaced(t *testing.T) {
	store := newFakeStore(withStatus(draft("a1", author.ID), models.StatusApproved))
	store.failNext = errors.New("connection reset")
	m := workflow.NewMachine(store, nil, zaptest.NewLogger(t))

	_, err := m.Publish(context.Background(), editor, "a1")
	var perErr *apperror.PersistenceError
	require.ErrorAs(t, err, &perErr)
	assert.ErrorContains(t, err, "connection reset")
}

package workflow

import (
	"context"

	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/apperror"
)

// BulkAction names the operations a selection can be put through.
type BulkAction string

const (
	BulkPublish      BulkAction = "publish"
	BulkUnpublish    BulkAction = "unpublish"
	BulkDelete       BulkAction = "delete"
	BulkRecategorize BulkAction = "recategorize"
)

// Valid reports whether a is a known bulk action.
func (a BulkAction) Valid() bool {
	switch a {
	case BulkPublish, BulkUnpublish, BulkDelete, BulkRecategorize:
		return true
	}
	return false
}

// BulkResult reports the outcome for one id of a bulk request.
type BulkResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkApply runs action over the full id set of one bulk request.
//
// A mixed-state batch (say, a draft selected alongside approved articles
// for bulk-publish) resolves per item: eligible articles transition,
// ineligible ones are reported in their result entry, and the batch as a
// whole succeeds. CategoryID is required for recategorize only.
func (m *Machine) BulkApply(ctx context.Context, actor Actor, action BulkAction, ids []string, categoryID *string) ([]BulkResult, error) {
	if !action.Valid() {
		return nil, apperror.Validation("action", "unknown bulk action: "+string(action))
	}
	if !actor.Role.AtLeast(models.RoleEditor) {
		return nil, apperror.Authorization(models.RoleEditor.String() + " role or higher")
	}
	if action == BulkRecategorize && (categoryID == nil || *categoryID == "") {
		return nil, apperror.Validation("category_id", "category is required for recategorize")
	}

	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		var err error
		switch action {
		case BulkPublish:
			_, err = m.Publish(ctx, actor, id)
		case BulkUnpublish:
			_, err = m.Unpublish(ctx, actor, id)
		case BulkDelete:
			err = m.deleteOne(ctx, id)
		case BulkRecategorize:
			err = m.recategorizeOne(ctx, id, *categoryID)
		}

		r := BulkResult{ID: id, OK: err == nil}
		if err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results, nil
}

// deleteOne hard-deletes an article and cascade-invalidates every derived
// cache entry.
func (m *Machine) deleteOne(ctx context.Context, id string) error {
	article, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return apperror.Persistence("delete article", err)
	}
	if m.cache != nil {
		m.cache.InvalidateArticle(ctx, article)
	}
	return nil
}

func (m *Machine) recategorizeOne(ctx context.Context, id, categoryID string) error {
	article, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.Update(ctx, id, map[string]any{"category_id": categoryID}); err != nil {
		return apperror.Persistence("recategorize article", err)
	}
	if m.cache != nil {
		m.cache.InvalidateArticle(ctx, article)
	}
	return nil
}

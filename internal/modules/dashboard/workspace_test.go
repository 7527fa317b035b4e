package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/modules/dashboard"
)

type fakeArticles struct {
	titles   map[string]string
	failNext bool
}

func (f *fakeArticles) GetByID(ctx context.Context, id string) (*models.ArticleModel, error) {
	title, ok := f.titles[id]
	if !ok {
		return nil, nil
	}
	a := &models.ArticleModel{Title: title}
	a.ID = id
	return a, nil
}

func (f *fakeArticles) Update(ctx context.Context, id string, fields map[string]any) error {
	if f.failNext {
		f.failNext = false
		return errors.New("write failed")
	}
	if title, ok := fields["title"].(string); ok {
		f.titles[id] = title
	}
	return nil
}

func TestWorkspace_PerUserIsolation(t *testing.T) {
	m := dashboard.NewManager(&fakeArticles{titles: map[string]string{}})

	a := m.Workspace("u1")
	b := m.Workspace("u2")
	a.Toggle("x")

	assert.Equal(t, 1, a.SelectedCount())
	assert.Zero(t, b.SelectedCount())
	assert.Same(t, a, m.Workspace("u1"))
}

func TestRenameArticle_Optimistic(t *testing.T) {
	store := &fakeArticles{titles: map[string]string{"a1": "Old"}}
	ws := dashboard.NewManager(store).Workspace("u1")
	ctx := context.Background()

	require.NoError(t, ws.RenameArticle(ctx, store, "a1", "New"))
	assert.Equal(t, "New", store.titles["a1"])

	// The row keeps showing the edit over a stale stored value, and
	// retires the overlay once the stored value catches up.
	assert.Equal(t, "New", ws.Title("a1", "Old"))
	assert.Equal(t, "New", ws.Title("a1", "New"))
}

func TestRenameArticle_RollsBackOnFailure(t *testing.T) {
	store := &fakeArticles{titles: map[string]string{"a1": "Old"}}
	ws := dashboard.NewManager(store).Workspace("u1")
	ctx := context.Background()

	store.failNext = true
	require.Error(t, ws.RenameArticle(ctx, store, "a1", "New"))

	assert.Equal(t, "Old", store.titles["a1"])
	assert.Equal(t, "Old", ws.Title("a1", "whatever"),
		"a failed rename shows the original title again")
}

func TestBulkApply_SelectionLifecycle(t *testing.T) {
	ws := dashboard.NewManager(&fakeArticles{titles: map[string]string{}}).Workspace("u1")
	ws.Toggle("a1")
	ws.Toggle("a2")
	ctx := context.Background()

	err := ws.BulkApply(ctx, "publish", func(ctx context.Context, action string, ids []string) error {
		return errors.New("backend down")
	})
	require.Error(t, err)
	assert.Equal(t, 2, ws.SelectedCount(), "failure preserves the selection")

	err = ws.BulkApply(ctx, "publish", func(ctx context.Context, action string, ids []string) error {
		assert.Len(t, ids, 2)
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, ws.SelectedCount(), "success clears the selection")
}

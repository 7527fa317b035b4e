// Package dashboard backs the article-list management screen: per-editor
// row selection, bulk actions over the selection and optimistic inline
// title edits.
package dashboard

import (
	"context"
	"sync"

	"github.com/inkpress/core/internal/editor"
	"github.com/inkpress/core/internal/models"
)

// Articles is the slice of the article store the dashboard needs.
type Articles interface {
	GetByID(ctx context.Context, id string) (*models.ArticleModel, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

// Workspace is one editor's dashboard state. Selection and pending inline
// edits are per user, not shared.
type Workspace struct {
	sel    *editor.Selection
	titles *editor.OptimisticMap[string]
}

// Manager hands out one workspace per user id.
type Manager struct {
	mu       sync.Mutex
	byUser   map[string]*Workspace
	articles Articles
}

// NewManager builds a workspace manager over the article store.
func NewManager(articles Articles) *Manager {
	return &Manager{byUser: map[string]*Workspace{}, articles: articles}
}

// Workspace returns the user's workspace, creating it on first use.
func (m *Manager) Workspace(userID string) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ws, ok := m.byUser[userID]; ok {
		return ws
	}
	ws := &Workspace{
		sel: editor.NewSelection(),
		titles: editor.NewOptimisticMap[string](func(ctx context.Context, id, title string) error {
			return m.articles.Update(ctx, id, map[string]any{"title": title})
		}),
	}
	m.byUser[userID] = ws
	return ws
}

// Toggle adds or removes an article from the selection.
func (w *Workspace) Toggle(id string) { w.sel.Toggle(id) }

// Selected returns the selected article ids.
func (w *Workspace) Selected() []string { return w.sel.IDs() }

// SelectedCount returns the selection size.
func (w *Workspace) SelectedCount() int { return w.sel.Len() }

// ClearSelection empties the selection.
func (w *Workspace) ClearSelection() { w.sel.Clear() }

// RenameArticle applies an inline title edit optimistically: the new title
// is visible in Title immediately, persisted in the background of the
// request, and rolled back if persistence fails.
func (w *Workspace) RenameArticle(ctx context.Context, a Articles, id, title string) error {
	current, err := a.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current != nil {
		w.titles.Begin(id, current.Title)
	}
	return w.titles.Commit(ctx, id, title)
}

// Title returns the title to display for an article row: the pending
// inline edit if one exists, otherwise the stored value. When the stored
// value has caught up with the edit, the overlay entry is retired.
func (w *Workspace) Title(id, stored string) string {
	shown := w.titles.Value(id, stored)
	if w.titles.Pending(id) && shown == stored {
		w.titles.ConfirmRefresh(id)
	}
	return shown
}

// BulkApply runs action over the current selection as one request via run.
// Success clears the selection; failure preserves it for a retry.
func (w *Workspace) BulkApply(ctx context.Context, action string, run editor.BulkFunc) error {
	return editor.NewBulkController(w.sel, run).Apply(ctx, action)
}

// Package editorsession hosts one live editing session per article. The
// session owns the document store, the drag controller and the autosave
// coordinator; all mutations funnel through it so history capture, dirty
// tracking and persistence stay ordered.
package editorsession

import (
	"context"
	"sync"

	"github.com/inkpress/core/internal/blocks"
	"github.com/inkpress/core/internal/editor"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/apperror"
	"go.uber.org/zap"
)

// ArticleStore is the persistence collaborator sessions load from and
// save to. *article.Service satisfies it.
type ArticleStore interface {
	GetByID(ctx context.Context, id string) (*models.ArticleModel, error)
	Blocks(ctx context.Context, id string) ([]*blocks.Block, error)
	UpdateBlocks(ctx context.Context, id string, content string) error
}

// Session is one article open in the editor. A session is single-editor:
// its mutex serializes the HTTP handlers of that one editor's requests, it
// is not a cross-session locking scheme.
type Session struct {
	ArticleID string

	mu       sync.Mutex
	store    *editor.DocumentStore
	drag     *editor.DragController
	autosave *editor.AutoSave
}

// Manager tracks open sessions by article id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	articles ArticleStore
	logger   *zap.Logger
	opts     []editor.AutoSaveOption
}

// NewManager builds a session manager over the article store.
func NewManager(articles ArticleStore, logger *zap.Logger, opts ...editor.AutoSaveOption) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		articles: articles,
		logger:   logger,
		opts:     opts,
	}
}

// Authorize verifies the user may edit articleID: its author, or an
// editor and above. Called before any session route runs.
func (m *Manager) Authorize(ctx context.Context, articleID, userID string, role models.Role) error {
	a, err := m.articles.GetByID(ctx, articleID)
	if err != nil {
		return err
	}
	if a == nil {
		return apperror.NotFound("article", articleID)
	}
	if !a.EditableBy(userID, role) {
		return apperror.Authorization("only the author or an editor may edit this article")
	}
	return nil
}

// Open loads the article's blocks into a fresh session, or returns the
// already-open one. Last writer wins across sessions; there is no
// cross-editor conflict resolution.
func (m *Manager) Open(ctx context.Context, articleID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[articleID]; ok {
		return s, nil
	}

	seq, err := m.articles.Blocks(ctx, articleID)
	if err != nil {
		return nil, err
	}

	store := editor.NewDocumentStore()
	store.Load(seq)

	s := &Session{ArticleID: articleID, store: store}
	s.drag = editor.NewDragController(store)
	s.autosave = editor.NewAutoSave(
		func() (string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return blocks.MarshalSequence(store.Blocks())
		},
		func(ctx context.Context, payload string) error {
			return m.articles.UpdateBlocks(ctx, articleID, payload)
		},
		m.logger,
		m.opts...,
	)

	m.sessions[articleID] = s
	return s, nil
}

// Get returns the open session for articleID.
func (m *Manager) Get(articleID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[articleID]
	if !ok {
		return nil, apperror.NotFound("editor session", articleID)
	}
	return s, nil
}

// Close flushes and discards the session for articleID.
func (m *Manager) Close(articleID string) {
	m.mu.Lock()
	s, ok := m.sessions[articleID]
	delete(m.sessions, articleID)
	m.mu.Unlock()

	if ok {
		s.autosave.SaveNow()
		s.autosave.Stop()
	}
}

// CloseAll flushes and discards every open session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		open = append(open, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.autosave.SaveNow()
		s.autosave.Stop()
	}
}

// AddBlock creates a block of the given type at the end of the document.
func (s *Session) AddBlock(t blocks.Type) (*blocks.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := blocks.New(t)
	if b == nil {
		return nil, apperror.Validation("type", "unknown block type: "+string(t))
	}
	s.store.SaveToHistory()
	s.store.AddBlock(b)
	s.store.AddRecentBlock(t)
	s.store.SetSelectedBlock(b.ID)
	s.autosave.NotifyChange()
	return b, nil
}

// UpdateBlock merges a partial payload patch into one block.
func (s *Session) UpdateBlock(id string, patch map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Get(id) == nil {
		// Matches the store contract: unknown ids are a silent no-op,
		// so nothing is captured or scheduled either.
		return
	}
	s.store.SaveToHistory()
	s.store.UpdateBlock(id, patch)
	s.autosave.NotifyChange()
}

// DeleteBlock removes one block.
func (s *Session) DeleteBlock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Get(id) == nil {
		return
	}
	s.store.SaveToHistory()
	s.store.DeleteBlock(id)
	s.autosave.NotifyChange()
}

// DuplicateBlock copies a block in place, directly after the original.
func (s *Session) DuplicateBlock(id string) (*blocks.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orig := s.store.Get(id)
	if orig == nil {
		return nil, apperror.NotFound("block", id)
	}
	s.store.SaveToHistory()

	dup := orig.Duplicate()
	seq := s.store.Blocks()
	out := make([]*blocks.Block, 0, len(seq)+1)
	for _, b := range seq {
		out = append(out, b)
		if b.ID == id {
			out = append(out, dup)
		}
	}
	blocks.Normalize(out)
	s.store.UpdateBlockOrder(out)
	s.autosave.NotifyChange()
	return dup, nil
}

// Move drags blockID onto targetID.
func (s *Session) Move(blockID, targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drag.DragStart(editor.DragPayload{BlockID: blockID})
	moved := s.drag.DragEnd(targetID)
	if moved {
		s.autosave.NotifyChange()
	}
	return moved
}

// InsertFromPalette drops a new block of type t from the palette.
func (s *Session) InsertFromPalette(t blocks.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drag.DragStart(editor.DragPayload{BlockType: t})
	created := s.drag.DragEnd("")
	if created {
		s.autosave.NotifyChange()
	}
	return created
}

// Undo steps the document back one history entry.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Undo() {
		return false
	}
	s.autosave.NotifyChange()
	return true
}

// Redo re-applies the last undone entry.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.store.Redo() {
		return false
	}
	s.autosave.NotifyChange()
	return true
}

// Select sets the selected block id ("" clears).
func (s *Session) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetSelectedBlock(id)
}

// SaveNow forces an immediate save (Cmd-S path and manual retry).
func (s *Session) SaveNow() { s.autosave.SaveNow() }

// State is a snapshot of the session for the editor UI.
type State struct {
	ArticleID  string          `json:"article_id"`
	Blocks     []*blocks.Block `json:"blocks"`
	Selected   string          `json:"selected,omitempty"`
	CanUndo    bool            `json:"can_undo"`
	CanRedo    bool            `json:"can_redo"`
	Recent     []blocks.Type   `json:"recent_blocks"`
	SaveStatus string          `json:"save_status"`
	LastSaved  string          `json:"last_saved,omitempty"`
}

// Snapshot returns the UI-facing view of the session. Blocks are cloned:
// the caller serializes them after the session mutex is released, so it
// must not share pointers with the live document.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.store.Blocks()
	copied := make([]*blocks.Block, len(seq))
	for i, b := range seq {
		copied[i] = b.Clone()
	}

	st := State{
		ArticleID:  s.ArticleID,
		Blocks:     copied,
		Selected:   s.store.SelectedBlock(),
		CanUndo:    s.store.CanUndo(),
		CanRedo:    s.store.CanRedo(),
		Recent:     s.store.RecentBlocks(),
		SaveStatus: string(s.autosave.Status()),
	}
	if t := s.autosave.LastSaved(); !t.IsZero() {
		st.LastSaved = t.Format("2006-01-02T15:04:05Z07:00")
	}
	return st
}

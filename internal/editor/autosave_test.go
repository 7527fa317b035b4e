package editor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/inkpress/core/internal/editor"
)

// saveRecorder is a controllable save sink: each save blocks until
// released and every persisted payload is recorded.
type saveRecorder struct {
	mu       sync.Mutex
	payloads []string
	failNext bool
	gate     chan struct{}
}

func newSaveRecorder() *saveRecorder {
	return &saveRecorder{}
}

func (r *saveRecorder) save(ctx context.Context, payload string) error {
	r.mu.Lock()
	gate := r.gate
	fail := r.failNext
	r.failNext = false
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return errors.New("write timeout")
	}

	r.mu.Lock()
	r.payloads = append(r.payloads, payload)
	r.mu.Unlock()
	return nil
}

func (r *saveRecorder) saved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.payloads))
	copy(out, r.payloads)
	return out
}

func (r *saveRecorder) block() chan struct{} {
	ch := make(chan struct{})
	r.mu.Lock()
	r.gate = ch
	r.mu.Unlock()
	return ch
}

func (r *saveRecorder) unblock(ch chan struct{}) {
	r.mu.Lock()
	r.gate = nil
	r.mu.Unlock()
	close(ch)
}

func waitStatus(t *testing.T, a *editor.AutoSave, want editor.SaveStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.Status() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("status %q never reached, last %q", want, a.Status())
}

func waitSaves(t *testing.T, r *saveRecorder, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.saved()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("wanted %d saves, got %d", n, len(r.saved()))
}

type docState struct {
	mu      sync.Mutex
	content string
}

func (d *docState) set(s string) {
	d.mu.Lock()
	d.content = s
	d.mu.Unlock()
}

func (d *docState) snapshot() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content, nil
}

func TestAutoSave_IdleWindowFires(t *testing.T) {
	doc := &docState{}
	rec := newSaveRecorder()
	a := editor.NewAutoSave(doc.snapshot, rec.save, zaptest.NewLogger(t),
		editor.WithWindows(20*time.Millisecond, time.Minute))
	defer a.Stop()

	doc.set("v1")
	a.NotifyChange()

	waitStatus(t, a, editor.SaveSaved)
	assert.Equal(t, []string{"v1"}, rec.saved())
	assert.False(t, a.Dirty())
	assert.WithinDuration(t, time.Now(), a.LastSaved(), time.Second)
}

func TestAutoSave_IdleWindowResetsPerEdit(t *testing.T) {
	doc := &docState{}
	rec := newSaveRecorder()
	a := editor.NewAutoSave(doc.snapshot, rec.save, zaptest.NewLogger(t),
		editor.WithWindows(150*time.Millisecond, time.Minute))
	defer a.Stop()

	// Keep editing faster than the idle window; no save should land yet.
	for i := 0; i < 5; i++ {
		doc.set("typing")
		a.NotifyChange()
		time.Sleep(25 * time.Millisecond)
	}
	assert.Empty(t, rec.saved())

	// Pause. The idle window elapses and the save lands.
	waitSaves(t, rec, 1)
}

func TestAutoSave_CeilingFiresDuringContinuousEditing(t *testing.T) {
	doc := &docState{}
	rec := newSaveRecorder()
	a := editor.NewAutoSave(doc.snapshot, rec.save, zaptest.NewLogger(t),
		editor.WithWindows(time.Minute, 80*time.Millisecond))
	defer a.Stop()

	// The idle window never elapses but the ceiling is not reset by edits.
	stop := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(stop) {
		doc.set("still typing")
		a.NotifyChange()
		time.Sleep(10 * time.Millisecond)
	}
	waitSaves(t, rec, 1)
}

func TestAutoSave_SerializedWithFollowUp(t *testing.T) {
	doc := &docState{}
	rec := newSaveRecorder()
	a := editor.NewAutoSave(doc.snapshot, rec.save, zaptest.NewLogger(t),
		editor.WithWindows(10*time.Millisecond, time.Minute))
	defer a.Stop()

	gate := rec.block()
	doc.set("v1")
	a.NotifyChange()
	waitStatus(t, a, editor.SaveSaving)

	// Edits while the first save is in flight must not start a second
	// save; they schedule one follow-up carrying the latest state.
	doc.set("v2")
	a.NotifyChange()
	doc.set("v3")
	a.NotifyChange()
	assert.True(t, a.Dirty())

	rec.unblock(gate)
	waitSaves(t, rec, 2)
	waitStatus(t, a, editor.SaveSaved)

	saved := rec.saved()
	require.Len(t, saved, 2)
	assert.Equal(t, "v3", saved[1], "follow-up save re-snapshots, carrying the latest edits")
}

func TestAutoSave_FailureKeepsDirtyUntilManualRetry(t *testing.T) {
	doc := &docState{}
	rec := newSaveRecorder()
	a := editor.NewAutoSave(doc.snapshot, rec.save, zaptest.NewLogger(t),
		editor.WithWindows(10*time.Millisecond, time.Minute))
	defer a.Stop()

	rec.failNext = true
	doc.set("important")
	a.NotifyChange()

	waitStatus(t, a, editor.SaveError)
	assert.True(t, a.Dirty())
	assert.Error(t, a.LastError())
	assert.Empty(t, rec.saved())

	// No automatic retry.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, editor.SaveError, a.Status())
	assert.Empty(t, rec.saved())

	a.Retry()
	waitStatus(t, a, editor.SaveSaved)
	assert.Equal(t, []string{"important"}, rec.saved())
	assert.NoError(t, a.LastError())
	assert.False(t, a.Dirty())
}

func TestAutoSave_SaveNowBypassesTimers(t *testing.T) {
	doc := &docState{}
	rec := newSaveRecorder()
	a := editor.NewAutoSave(doc.snapshot, rec.save, zaptest.NewLogger(t),
		editor.WithWindows(time.Minute, time.Minute))
	defer a.Stop()

	doc.set("manual")
	a.NotifyChange()
	a.SaveNow()

	waitStatus(t, a, editor.SaveSaved)
	assert.Equal(t, []string{"manual"}, rec.saved())
}

func TestAutoSave_StartsIdle(t *testing.T) {
	a := editor.NewAutoSave(
		func() (string, error) { return "", nil },
		func(ctx context.Context, payload string) error { return nil },
		zaptest.NewLogger(t))
	assert.Equal(t, editor.SaveIdle, a.Status())
	assert.False(t, a.Dirty())
}

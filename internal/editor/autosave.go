package editor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SaveStatus is the auto-save lifecycle state.
type SaveStatus string

const (
	SaveIdle   SaveStatus = "idle"
	SaveSaving SaveStatus = "saving"
	SaveSaved  SaveStatus = "saved"
	SaveError  SaveStatus = "error"
)

const (
	// DefaultIdleWindow fires a save after the user pauses editing.
	DefaultIdleWindow = 3 * time.Second
	// DefaultMaxWindow is the staleness ceiling under continuous editing.
	DefaultMaxWindow = 30 * time.Second
)

// SnapshotFunc serializes the current document for persistence. It is
// invoked at dispatch time so a follow-up save always carries the latest
// state, never the snapshot in flight when the edit happened.
type SnapshotFunc func() (string, error)

// SaveFunc persists a serialized document.
type SaveFunc func(ctx context.Context, payload string) error

// AutoSave debounces persistence of a document. Two timers run against
// every edit: a short idle window reset on each change, and a ceiling
// started at the first unsaved change and never reset, so a continuously
// typing user is still persisted within the ceiling. Whichever fires first
// dispatches a save.
//
// At most one save is in flight at a time; a trigger arriving mid-flight
// schedules a follow-up that re-snapshots after the current save resolves.
// A failed save keeps the dirty payload and waits for a manual retry.
type AutoSave struct {
	mu sync.Mutex

	status    SaveStatus
	lastSaved time.Time
	lastErr   error

	dirty    bool
	inFlight bool
	pending  bool

	idleTimer   *time.Timer
	ceilTimer   *time.Timer
	ceilRunning bool

	idleWindow time.Duration
	maxWindow  time.Duration

	snapshot SnapshotFunc
	save     SaveFunc
	logger   *zap.Logger
}

// AutoSaveOption customizes an AutoSave.
type AutoSaveOption func(*AutoSave)

// WithWindows overrides the debounce windows (tests use short ones).
func WithWindows(idle, max time.Duration) AutoSaveOption {
	return func(a *AutoSave) {
		a.idleWindow = idle
		a.maxWindow = max
	}
}

// NewAutoSave builds a coordinator around a snapshot source and a save sink.
func NewAutoSave(snapshot SnapshotFunc, save SaveFunc, logger *zap.Logger, opts ...AutoSaveOption) *AutoSave {
	a := &AutoSave{
		status:     SaveIdle,
		idleWindow: DefaultIdleWindow,
		maxWindow:  DefaultMaxWindow,
		snapshot:   snapshot,
		save:       save,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NotifyChange marks the document dirty and (re)arms the debounce timers.
// The idle timer is reset, never stacked; the ceiling timer is armed only
// if it is not already running.
func (a *AutoSave) NotifyChange() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.dirty = true

	if a.idleTimer == nil {
		a.idleTimer = time.AfterFunc(a.idleWindow, a.onTimer)
	} else {
		a.idleTimer.Stop()
		a.idleTimer.Reset(a.idleWindow)
	}

	if !a.ceilRunning {
		a.ceilRunning = true
		if a.ceilTimer == nil {
			a.ceilTimer = time.AfterFunc(a.maxWindow, a.onTimer)
		} else {
			a.ceilTimer.Reset(a.maxWindow)
		}
	}
}

// SaveNow bypasses the debounce timers (keyboard shortcut, manual retry).
// The serialization rule still applies: if a save is in flight this only
// schedules a follow-up.
func (a *AutoSave) SaveNow() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dispatchLocked(true)
}

// Retry resends the retained dirty payload after a failure.
func (a *AutoSave) Retry() { a.SaveNow() }

// Status returns the current save status.
func (a *AutoSave) Status() SaveStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// LastSaved returns the time of the last successful save.
func (a *AutoSave) LastSaved() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSaved
}

// LastError returns the error of the most recent failed save.
func (a *AutoSave) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Dirty reports whether unsaved changes exist.
func (a *AutoSave) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty || a.pending || a.inFlight
}

// Stop cancels the timers. Pending in-flight saves still resolve.
func (a *AutoSave) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.idleTimer != nil {
		a.idleTimer.Stop()
	}
	if a.ceilTimer != nil {
		a.ceilTimer.Stop()
	}
	a.ceilRunning = false
}

func (a *AutoSave) onTimer() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dispatchLocked(false)
}

// dispatchLocked starts a save attempt. Caller holds the mutex.
func (a *AutoSave) dispatchLocked(force bool) {
	if a.inFlight {
		a.pending = true
		return
	}
	if !a.dirty && !force {
		return
	}

	a.stopTimersLocked()

	a.inFlight = true
	a.status = SaveSaving
	a.dirty = false

	// Snapshot and save run outside the mutex: the snapshot source may
	// hold its own lock while notifying us of changes.
	go func() {
		payload, err := a.snapshot()
		if err == nil {
			err = a.save(context.Background(), payload)
		} else if a.logger != nil {
			a.logger.Error("autosave snapshot failed", zap.Error(err))
		}
		a.finish(err)
	}()
}

func (a *AutoSave) finish(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.inFlight = false

	if err != nil {
		// Keep the payload dirty for a manual retry. No automatic retry.
		a.status = SaveError
		a.lastErr = err
		a.dirty = true
		a.pending = false
		if a.logger != nil {
			a.logger.Warn("autosave failed, awaiting manual retry", zap.Error(err))
		}
		return
	}

	a.status = SaveSaved
	a.lastSaved = time.Now()
	a.lastErr = nil

	if a.pending {
		// Edits arrived while the save was in flight. The follow-up
		// re-snapshots, so it carries those edits.
		a.pending = false
		a.dispatchLocked(true)
	}
}

func (a *AutoSave) stopTimersLocked() {
	if a.idleTimer != nil {
		a.idleTimer.Stop()
	}
	if a.ceilTimer != nil {
		a.ceilTimer.Stop()
	}
	a.ceilRunning = false
}

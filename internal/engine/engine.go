// Package engine reconciles the local stopwatch snapshot with the
// backend's authoritative timer session. It owns the mirror lifecycle and
// is the only component that computes displayed elapsed time: views render
// what it produces, the poll loop feeds it what the server said.
package engine

import (
	"time"

	"github.com/workpulse/focus-tui/internal/api"
	"github.com/workpulse/focus-tui/internal/mirror"
)

// AutoCompleteNote is the note attached when the engine completes a session
// because its declared duration elapsed.
const AutoCompleteNote = "Auto-completed - duration reached"

// Action describes what Reconcile did to the mirror.
type Action int

const (
	// ActionNone means the mirror was left untouched. Polling exists to
	// detect transitions, not to re-time the visible clock.
	ActionNone Action = iota
	// ActionCreated means a mirror was created for a running session.
	ActionCreated
	// ActionReplaced means a new session superseded the mirrored one.
	ActionReplaced
	// ActionDestroyed means the mirror was removed.
	ActionDestroyed
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionReplaced:
		return "replaced"
	case ActionDestroyed:
		return "destroyed"
	default:
		return "none"
	}
}

// Engine holds the mirror-or-nothing state and the auto-complete latch.
// All methods must be called from the single UI loop; the engine does no
// locking of its own.
type Engine struct {
	slot *mirror.Store
	now  func() time.Time

	cur       *mirror.Mirror
	gen       int
	autoFired bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine backed by the given slot store. A persisted slot
// from a previous run is adopted as-is so a reloaded client renders a
// plausible clock immediately; the first reconciliation corrects any drift.
// An unreadable slot is treated as absent.
func New(slot *mirror.Store, opts ...Option) *Engine {
	e := &Engine{slot: slot, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if m, err := slot.Load(); err == nil {
		e.cur = m
	}
	return e
}

// Mirror returns the current mirror, or nil.
func (e *Engine) Mirror() *mirror.Mirror {
	return e.cur
}

// Running reports whether a mirror exists, i.e. the last reconciled read
// said the session is running.
func (e *Engine) Running() bool {
	return e.cur != nil
}

// Generation identifies the current tick schedule. It bumps every time the
// mirror is created, replaced, or destroyed; tick messages stamped with an
// older generation belong to a dead schedule and must be dropped.
func (e *Engine) Generation() int {
	return e.gen
}

// Elapsed returns the live elapsed time, truncated to whole seconds.
// It is zero when no mirror exists.
func (e *Engine) Elapsed() time.Duration {
	if e.cur == nil {
		return 0
	}
	d := e.now().Sub(e.cur.StartedAt)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// Reconcile applies a fresh authoritative read (a poll result or a mutation
// response) to the mirror. Passing nil means the backend reports no live
// session. The returned error is a slot persistence failure; the in-memory
// mirror is updated regardless, since the slot only matters across reloads.
func (e *Engine) Reconcile(remote *api.Timer) (Action, error) {
	if remote == nil || remote.Status != api.StatusRunning {
		return e.destroy()
	}

	// Same running session: leave the mirror alone. Re-deriving the start
	// instant on every poll would make the visible clock jitter.
	if e.cur != nil && e.cur.SessionID == remote.ID {
		return ActionNone, nil
	}

	replaced := e.cur != nil
	now := e.now()
	m := &mirror.Mirror{
		SessionID:          remote.ID,
		Tag:                remote.Tag,
		DurationMinutes:    remote.DurationMinutes,
		StartedAt:          now.Add(-time.Duration(remote.ElapsedSeconds) * time.Second),
		BackendStartedAt:   remote.StartedAt,
		TotalPausedSeconds: remote.TotalPausedSeconds,
	}
	e.cur = m
	e.gen++
	e.autoFired = false

	err := e.slot.Save(m)
	if replaced {
		return ActionReplaced, err
	}
	return ActionCreated, err
}

func (e *Engine) destroy() (Action, error) {
	if e.cur == nil {
		return ActionNone, nil
	}
	e.cur = nil
	e.gen++
	e.autoFired = false
	return ActionDestroyed, e.slot.Clear()
}

// AutoCompleteDue reports whether the mirrored session just crossed its
// declared duration. It returns true at most once per mirror: the latch
// arms the instant the caller is told to complete, not when the completion
// call resolves, so a slow backend cannot let a second tick re-fire it.
// The latch resets when reconciliation destroys or replaces the mirror.
func (e *Engine) AutoCompleteDue() bool {
	if e.cur == nil || e.autoFired || e.cur.DurationMinutes <= 0 {
		return false
	}
	if e.Elapsed() >= time.Duration(e.cur.DurationMinutes)*time.Minute {
		e.autoFired = true
		return true
	}
	return false
}

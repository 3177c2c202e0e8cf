package app

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/workpulse/focus-tui/internal/api"
	"github.com/workpulse/focus-tui/internal/config"
	"github.com/workpulse/focus-tui/internal/engine"
	"github.com/workpulse/focus-tui/internal/mirror"
)

// newTestModel builds a model whose API client points nowhere. The tests
// below drive Update with messages directly and never execute commands
// that would hit the network.
func newTestModel(t *testing.T, opts ...engine.Option) Model {
	t.Helper()
	slot := mirror.NewStore(t.TempDir())
	cfg := config.Default()
	eng := engine.New(slot, opts...)
	return New(cfg, api.NewClient("http://127.0.0.1:0", ""), nil, eng, nil)
}

func running(id string, elapsed, duration int) *api.Timer {
	return &api.Timer{
		ID:              id,
		Tag:             "deep work",
		DurationMinutes: duration,
		Status:          api.StatusRunning,
		ElapsedSeconds:  elapsed,
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want app.Model", next)
	}
	return out, cmd
}

func TestPollFailureKeepsLastGoodState(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, pollResultMsg{timer: running("s1", 10, 25)})
	if !m.eng.Running() {
		t.Fatal("successful poll should create the mirror")
	}

	m, _ = update(t, m, pollResultMsg{err: errors.New("connection refused")})
	if !m.stale {
		t.Error("failed poll should mark the display stale")
	}
	if m.current == nil || m.current.ID != "s1" {
		t.Error("failed poll should keep the last good session")
	}
	if !m.eng.Running() {
		t.Error("failed poll must not destroy the mirror")
	}
}

func TestPollRecoveryClearsStale(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, pollResultMsg{err: errors.New("timeout")})
	m, _ = update(t, m, pollResultMsg{timer: nil})
	if m.stale {
		t.Error("successful poll should clear the stale flag")
	}
}

func TestPollStartsTickChainOnCreate(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, pollResultMsg{timer: running("s1", 0, 25)})
	if cmd == nil {
		t.Fatal("mirror creation should schedule a tick")
	}

	// Same session again: no new chain, the live one is enough.
	_, cmd = update(t, m, pollResultMsg{timer: running("s1", 60, 25)})
	if cmd != nil {
		t.Error("an unchanged session must not schedule a second tick chain")
	}
}

func TestStaleTickDropped(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, pollResultMsg{timer: running("s1", 0, 25)})
	gen := m.eng.Generation()

	// Session ends; the old schedule's ticks are now orphans.
	m, _ = update(t, m, pollResultMsg{timer: nil})

	_, cmd := update(t, m, tickMsg{gen: gen})
	if cmd != nil {
		t.Error("a tick stamped with a dead generation must not reschedule")
	}
}

func TestLiveTickReschedules(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, pollResultMsg{timer: running("s1", 0, 25)})

	_, cmd := update(t, m, tickMsg{gen: m.eng.Generation()})
	if cmd == nil {
		t.Error("a live tick should schedule the next one")
	}
}

func TestAutoCompleteIssuedOnce(t *testing.T) {
	at := time.Now()
	clock := func() time.Time { return at }
	m := newTestModel(t, engine.WithClock(clock))

	m, _ = update(t, m, pollResultMsg{timer: running("s1", 0, 25)})

	at = at.Add(25 * time.Minute)
	m, _ = update(t, m, tickMsg{gen: m.eng.Generation()})
	if !m.busy {
		t.Fatal("crossing the target duration should issue a completion")
	}

	// The completion call is still in flight; the next tick must not
	// issue another one.
	m.busy = false
	m, _ = update(t, m, tickMsg{gen: m.eng.Generation()})
	if m.busy {
		t.Error("auto-complete fired twice for one session")
	}
}

func TestMutationResponseReconcilesTerminalState(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, pollResultMsg{timer: running("s1", 0, 25)})

	done := running("s1", 1500, 25)
	done.Status = api.StatusCompleted
	m, cmd := update(t, m, mutationResultMsg{op: "complete", timer: done})
	if m.current != nil {
		t.Error("terminal response should clear the current session")
	}
	if m.eng.Running() {
		t.Error("terminal response should destroy the mirror")
	}
	if cmd == nil {
		t.Error("mutation success should trigger an immediate refetch")
	}
}

func TestMutationFailureKeepsState(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, pollResultMsg{timer: running("s1", 0, 25)})
	m.busy = true

	reqErr := &api.RequestError{Method: "POST", Path: "/timers/s1/pause", StatusCode: 409, Body: "not running"}
	m, _ = update(t, m, mutationResultMsg{op: "pause", err: reqErr})
	if m.busy {
		t.Error("failed mutation should release the busy flag")
	}
	if m.errLine == "" {
		t.Error("failed mutation should surface an inline error")
	}
	if !m.eng.Running() {
		t.Error("failed mutation must not touch the mirror")
	}
}

func TestStartKeyOnlyWhenIdle(t *testing.T) {
	m := newTestModel(t)
	m.width, m.height = 80, 24

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if m.overlay != overlayControl {
		t.Error("start key should open the start form while idle")
	}

	m.overlay = overlayNone
	m.control.Hide()
	m, _ = update(t, m, pollResultMsg{timer: running("s1", 0, 25)})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if m.overlay == overlayControl {
		t.Error("start key must be a no-op while a session is live")
	}
}

func TestFocusRegainedTriggersRefetch(t *testing.T) {
	m := newTestModel(t)
	_, cmd := update(t, m, tea.FocusMsg{})
	if cmd == nil {
		t.Error("focus regained should trigger an immediate poll")
	}
}

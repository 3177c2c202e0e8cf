// Package app wires the reconciliation engine, the backend clients, and
// the views into the Bubble Tea root model. All scheduling lives here:
// the one-second tick chain, the poll chain, and the refetch triggers
// (focus regained, notification channel events, mutation responses).
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/workpulse/focus-tui/internal/api"
	"github.com/workpulse/focus-tui/internal/config"
	"github.com/workpulse/focus-tui/internal/engine"
	"github.com/workpulse/focus-tui/internal/history"
	"github.com/workpulse/focus-tui/internal/theme"
	"github.com/workpulse/focus-tui/internal/views/control"
	"github.com/workpulse/focus-tui/internal/views/help"
	"github.com/workpulse/focus-tui/internal/views/status"
	"github.com/workpulse/focus-tui/internal/views/timer"
)

// overlay identifies which panel floats over the main view.
type overlay int

const (
	overlayNone overlay = iota
	overlayControl
	overlayHelp
)

// --- messages ---

// tickMsg advances the visible clock. Gen stamps the tick schedule it
// belongs to; ticks from a dead schedule are dropped.
type tickMsg struct {
	gen int
}

// pollDueMsg fires when the periodic poll interval elapses.
type pollDueMsg struct{}

// pollResultMsg carries an authoritative read of the current session.
// A nil timer with a nil error means no live session.
type pollResultMsg struct {
	timer *api.Timer
	err   error
}

// mutationResultMsg carries the outcome of a state-changing call.
type mutationResultMsg struct {
	op    string
	timer *api.Timer
	err   error
}

// summaryMsg carries the day's totals from the local session log.
type summaryMsg struct {
	sum history.Summary
	err error
}

// historySavedMsg reports a session-log insert so the summary can refresh.
type historySavedMsg struct {
	err error
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg    *config.Config
	client *api.Client
	notify *api.NotifyClient
	eng    *engine.Engine
	hist   *history.Store

	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	// current is the last good authoritative read. It survives poll
	// failures so the display degrades to stale rather than blank.
	current  *api.Timer
	lastSync time.Time
	stale    bool
	busy     bool
	errLine  string

	overlay overlay
	control control.Model
	card    timer.Model
	bar     status.Model
	help    help.Model
}

// New assembles the root model. hist may be nil when the session log is
// disabled; everything else is required.
func New(cfg *config.Config, client *api.Client, notify *api.NotifyClient, eng *engine.Engine, hist *history.Store) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		cfg:     cfg,
		client:  client,
		notify:  notify,
		eng:     eng,
		hist:    hist,
		ctx:     ctx,
		cancel:  cancel,
		keys:    DefaultKeyMap(),
		control: control.New(),
		card:    timer.New(),
		bar:     status.New(),
		help:    help.New(),
	}
}

// Init starts the poll chain, the notification channel, and, if a slot
// survived from a previous run, the tick chain for the adopted mirror.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.pollCmd(), m.pollTimerCmd()}
	if m.notify != nil {
		cmds = append(cmds, m.notify.Listen(m.ctx))
	}
	if m.eng.Running() {
		cmds = append(cmds, m.tickCmd())
	}
	if m.hist != nil {
		cmds = append(cmds, m.summaryCmd())
	}
	return tea.Batch(cmds...)
}

// --- commands ---

// tickCmd schedules the next clock tick, stamped with the current mirror
// generation.
func (m Model) tickCmd() tea.Cmd {
	gen := m.eng.Generation()
	return tea.Tick(m.cfg.Timer.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) pollTimerCmd() tea.Cmd {
	return tea.Tick(m.cfg.Timer.PollInterval, func(time.Time) tea.Msg {
		return pollDueMsg{}
	})
}

// pollCmd fetches the current session once.
func (m Model) pollCmd() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		t, err := client.Current(ctx)
		return pollResultMsg{timer: t, err: err}
	}
}

func (m Model) startCmd(tag string, durationMinutes int) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		t, err := client.Start(ctx, tag, durationMinutes)
		return mutationResultMsg{op: "start", timer: t, err: err}
	}
}

func (m Model) pauseCmd(id string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		t, err := client.Pause(ctx, id)
		return mutationResultMsg{op: "pause", timer: t, err: err}
	}
}

func (m Model) resumeCmd(id string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		t, err := client.Resume(ctx, id)
		return mutationResultMsg{op: "resume", timer: t, err: err}
	}
}

func (m Model) completeCmd(op, id, note string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		t, err := client.Complete(ctx, id, note)
		return mutationResultMsg{op: op, timer: t, err: err}
	}
}

func (m Model) cancelCmd(id, note string) tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		t, err := client.Cancel(ctx, id, note)
		return mutationResultMsg{op: "cancel", timer: t, err: err}
	}
}

func (m Model) summaryCmd() tea.Cmd {
	ctx, hist := m.ctx, m.hist
	return func() tea.Msg {
		sum, err := hist.DaySummary(ctx, time.Now())
		return summaryMsg{sum: sum, err: err}
	}
}

func (m Model) recordCmd(e history.Entry) tea.Cmd {
	ctx, hist := m.ctx, m.hist
	return func() tea.Msg {
		return historySavedMsg{err: hist.Insert(ctx, e)}
	}
}

// --- update ---

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 2
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.FocusMsg:
		// The terminal regained focus. Suspended laptops and throttled
		// background terminals make the periodic chain unreliable, so
		// refetch right away.
		return m, m.pollCmd()

	case tickMsg:
		return m.handleTick(msg)

	case pollDueMsg:
		return m, tea.Batch(m.pollTimerCmd(), m.pollCmd())

	case pollResultMsg:
		return m.handlePollResult(msg)

	case mutationResultMsg:
		return m.handleMutationResult(msg)

	case summaryMsg:
		if msg.err != nil {
			log.Printf("history summary: %v", msg.err)
			return m, nil
		}
		m.bar.TodaySessions = msg.sum.Sessions
		m.bar.TodayFocused = time.Duration(msg.sum.FocusedSeconds) * time.Second
		return m, nil

	case historySavedMsg:
		if msg.err != nil {
			log.Printf("history insert: %v", msg.err)
			return m, nil
		}
		return m, m.summaryCmd()

	case api.NotifyConnectedMsg:
		m.bar.Connected = true
		return m, tea.Batch(m.pollCmd(), m.notify.ReadLoop(m.ctx))

	case api.NotifyDisconnectedMsg:
		m.bar.Connected = false
		return m, m.notify.Listen(m.ctx)

	case api.TimerChangedMsg:
		return m, tea.Batch(m.pollCmd(), m.notify.ReadLoop(m.ctx))
	}

	if m.overlay == overlayControl {
		var cmd tea.Cmd
		m.control, cmd = m.control.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleTick advances the clock and checks the auto-complete latch.
func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	// A tick stamped with an old generation belongs to a schedule whose
	// mirror is gone. Dropping it kills the orphaned chain; the live
	// schedule was started by whatever bumped the generation.
	if msg.gen != m.eng.Generation() {
		return m, nil
	}

	cmds := []tea.Cmd{m.tickCmd()}
	if m.eng.AutoCompleteDue() {
		id := m.eng.Mirror().SessionID
		m.busy = true
		cmds = append(cmds, m.completeCmd("auto-complete", id, engine.AutoCompleteNote))
	}
	return m, tea.Batch(cmds...)
}

// handlePollResult reconciles an authoritative read. Failures keep the
// last good state and flag it stale.
func (m Model) handlePollResult(msg pollResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.stale = true
		m.bar.Stale = true
		return m, nil
	}
	m.stale = false
	m.bar.Stale = false
	m.lastSync = time.Now()
	m.bar.LastSync = m.lastSync
	m.current = msg.timer
	return m, m.applyReconcile(msg.timer)
}

// applyReconcile feeds a read to the engine and starts a fresh tick chain
// when a mirror came into existence.
func (m *Model) applyReconcile(t *api.Timer) tea.Cmd {
	action, err := m.eng.Reconcile(t)
	if err != nil {
		log.Printf("timer slot: %v", err)
	}
	if action == engine.ActionCreated || action == engine.ActionReplaced {
		return m.tickCmd()
	}
	return nil
}

// handleMutationResult applies a mutation response. Success reconciles
// immediately off the response and also refetches, so the display is
// right even if the response raced a concurrent change.
func (m Model) handleMutationResult(msg mutationResultMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		if m.overlay == overlayControl {
			m.control.Err = errorLine(msg.err)
		} else {
			m.errLine = fmt.Sprintf("%s failed: %s", msg.op, errorLine(msg.err))
		}
		return m, nil
	}

	m.errLine = ""
	if m.overlay == overlayControl {
		m.control.Hide()
		m.overlay = overlayNone
	}

	var cmds []tea.Cmd

	t := msg.timer
	if t != nil && t.Status.Live() {
		m.current = t
	} else {
		m.current = nil
	}
	if cmd := m.applyReconcile(t); cmd != nil {
		cmds = append(cmds, cmd)
	}

	if t != nil && !t.Status.Live() && m.hist != nil {
		cmds = append(cmds, m.recordCmd(history.Entry{
			SessionID:       t.ID,
			Tag:             t.Tag,
			DurationMinutes: t.DurationMinutes,
			ElapsedSeconds:  t.ElapsedSeconds,
			Outcome:         history.Outcome(t.Status),
			Note:            t.Note,
			StartedAt:       t.StartedAt,
			EndedAt:         time.Now(),
		}))
	}

	cmds = append(cmds, m.pollCmd())
	return m, tea.Batch(cmds...)
}

// errorLine renders an error for the single inline line the UI affords.
func errorLine(err error) string {
	switch e := err.(type) {
	case *api.ValidationError:
		return e.Msg
	case *api.RequestError:
		if e.Body != "" {
			return fmt.Sprintf("server said %d: %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("server said %d", e.StatusCode)
	default:
		return err.Error()
	}
}

// --- keys ---

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.overlay == overlayHelp {
		switch {
		case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
			m.overlay = overlayNone
		}
		return m, nil
	}

	if m.overlay == overlayControl {
		return m.handleControlKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		if m.notify != nil {
			m.notify.Close()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.pollCmd()

	case key.Matches(msg, m.keys.Start):
		if m.current != nil || m.busy {
			return m, nil
		}
		m.overlay = overlayControl
		return m, m.control.ShowStart(m.cfg.Timer.DefaultDurationMinutes)

	case key.Matches(msg, m.keys.PauseResume):
		if m.current == nil || m.busy {
			return m, nil
		}
		m.busy = true
		m.errLine = ""
		if m.current.Status == api.StatusRunning {
			return m, m.pauseCmd(m.current.ID)
		}
		return m, m.resumeCmd(m.current.ID)

	case key.Matches(msg, m.keys.Complete):
		if m.current == nil || m.busy {
			return m, nil
		}
		m.overlay = overlayControl
		return m, m.control.ShowNote(control.OpComplete, m.current.ID)

	case key.Matches(msg, m.keys.Cancel):
		if m.current == nil || m.busy {
			return m, nil
		}
		m.overlay = overlayControl
		return m, m.control.ShowNote(control.OpCancel, m.current.ID)
	}

	return m, nil
}

func (m Model) handleControlKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.control.Hide()
		m.overlay = overlayNone
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.busy {
			return m, nil
		}
		switch m.control.Mode() {
		case control.ModeStart:
			tag, minutes, ok := m.control.StartValues()
			if !ok {
				m.control.Err = "minutes must be a whole non-negative number"
				return m, nil
			}
			m.busy = true
			return m, m.startCmd(tag, minutes)
		case control.ModeNote:
			id := m.control.SessionID()
			note := m.control.Note()
			m.busy = true
			if m.control.Op() == control.OpCancel {
				return m, m.cancelCmd(id, note)
			}
			return m, m.completeCmd("complete", id, note)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.control, cmd = m.control.Update(msg)
	return m, cmd
}

// --- view ---

// View renders the status bar, the timer card, and any overlay.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	card := m.card
	switch {
	case m.eng.Running():
		mir := m.eng.Mirror()
		card.Status = "running"
		card.Tag = mir.Tag
		card.DurationMinutes = mir.DurationMinutes
		card.Elapsed = m.eng.Elapsed()
	case m.current != nil && m.current.Status == api.StatusPaused:
		// No mirror while paused: the frozen clock comes straight from
		// the last authoritative read.
		card.Status = "paused"
		card.Tag = m.current.Tag
		card.DurationMinutes = m.current.DurationMinutes
		card.Elapsed = time.Duration(m.current.ElapsedSeconds) * time.Second
	default:
		card.Status = "idle"
	}

	sections := []string{m.bar.View(), "", card.View()}
	if m.errLine != "" {
		sections = append(sections, theme.StyleError.Render(m.errLine))
	}
	sections = append(sections, theme.StyleDimmed.Render(
		"s:start  space:pause/resume  c:complete  x:cancel  r:refresh  ?:help  q:quit"))
	main := lipgloss.JoinVertical(lipgloss.Left, sections...)

	switch m.overlay {
	case overlayControl:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.control.View())
	case overlayHelp:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View())
	}
	return main
}

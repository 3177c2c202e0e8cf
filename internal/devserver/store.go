package devserver

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transition errors, mapped to HTTP statuses by the server.
var (
	ErrNoSession      = errors.New("no such timer session")
	ErrAlreadyRunning = errors.New("a timer session is already active")
	ErrNotRunning     = errors.New("timer is not running")
	ErrNotPaused      = errors.New("timer is not paused")
	ErrTerminal       = errors.New("timer session already ended")
	ErrEmptyTag       = errors.New("task name must not be empty")
)

// Store keeps one timer session per user. The terminal session is retained
// until the next start so mutation responses can include it, but Current
// stops returning it immediately.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session // keyed by user
	now      func() time.Time
}

// NewStore creates an empty store using the wall clock.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// SetClock overrides the wall clock, for tests.
func (st *Store) SetClock(now func() time.Time) {
	st.now = now
}

// Current returns the user's live session, or nil.
func (st *Store) Current(user string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[user]
	if !ok || !s.Status.Live() {
		return nil
	}
	copy := *s
	return &copy
}

// Start creates a new running session. Only one live session per user is
// allowed.
func (st *Store) Start(user, tag string, durationMinutes int) (*Session, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, ErrEmptyTag
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if existing, ok := st.sessions[user]; ok && existing.Status.Live() {
		return nil, ErrAlreadyRunning
	}
	s := &Session{
		ID:              uuid.NewString(),
		Tag:             strings.TrimSpace(tag),
		DurationMinutes: durationMinutes,
		StartedAt:       st.now(),
		Status:          StatusRunning,
	}
	st.sessions[user] = s
	copy := *s
	return &copy, nil
}

// Pause freezes a running session.
func (st *Store) Pause(user, id string) (*Session, error) {
	return st.transition(user, id, func(s *Session) error {
		if !s.Status.Live() {
			return ErrTerminal
		}
		if s.Status != StatusRunning {
			return ErrNotRunning
		}
		s.Status = StatusPaused
		s.PausedAt = st.now()
		return nil
	})
}

// Resume continues a paused session; the pause gap is added to TotalPaused
// so elapsed active time carries on from its frozen value.
func (st *Store) Resume(user, id string) (*Session, error) {
	return st.transition(user, id, func(s *Session) error {
		if !s.Status.Live() {
			return ErrTerminal
		}
		if s.Status != StatusPaused {
			return ErrNotPaused
		}
		s.TotalPaused += st.now().Sub(s.PausedAt)
		s.PausedAt = time.Time{}
		s.Status = StatusRunning
		return nil
	})
}

// Complete ends a session successfully, from running or paused.
func (st *Store) Complete(user, id, note string) (*Session, error) {
	return st.end(user, id, note, StatusCompleted)
}

// Cancel discards a session, from running or paused.
func (st *Store) Cancel(user, id, note string) (*Session, error) {
	return st.end(user, id, note, StatusCancelled)
}

func (st *Store) end(user, id, note string, terminal Status) (*Session, error) {
	return st.transition(user, id, func(s *Session) error {
		if !s.Status.Live() {
			return ErrTerminal
		}
		now := st.now()
		if s.Status == StatusPaused {
			s.TotalPaused += now.Sub(s.PausedAt)
			s.PausedAt = time.Time{}
		}
		s.Status = terminal
		s.Note = note
		s.EndedAt = now
		return nil
	})
}

func (st *Store) transition(user, id string, apply func(*Session) error) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[user]
	if !ok || s.ID != id {
		return nil, ErrNoSession
	}
	if err := apply(s); err != nil {
		return nil, err
	}
	copy := *s
	return &copy, nil
}

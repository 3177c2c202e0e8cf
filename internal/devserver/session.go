// Package devserver is an in-memory implementation of the WorkPulse timer
// HTTP contract, sufficient to develop and test the TUI without the
// production HR backend.
package devserver

import (
	"time"
)

// Status is the lifecycle state of a timer session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Live reports whether the session still counts as "current".
func (s Status) Live() bool {
	return s == StatusRunning || s == StatusPaused
}

// Session is the server-side timer record. All time math lives here:
// elapsed active time is start-to-now minus accumulated pause time, frozen
// at PausedAt while paused.
type Session struct {
	ID              string
	Tag             string
	DurationMinutes int
	StartedAt       time.Time
	Status          Status
	Note            string
	PausedAt        time.Time // zero unless currently paused
	TotalPaused     time.Duration
	EndedAt         time.Time // zero unless terminal
}

// ElapsedSeconds returns the accumulated active seconds at the given instant.
func (s *Session) ElapsedSeconds(now time.Time) int {
	var active time.Duration
	switch s.Status {
	case StatusPaused:
		active = s.PausedAt.Sub(s.StartedAt) - s.TotalPaused
	case StatusCompleted, StatusCancelled:
		active = s.EndedAt.Sub(s.StartedAt) - s.TotalPaused
	default:
		active = now.Sub(s.StartedAt) - s.TotalPaused
	}
	if active < 0 {
		active = 0
	}
	return int(active / time.Second)
}

// wireTimer is the JSON shape shared by all timer responses.
type wireTimer struct {
	ID                 string    `json:"id"`
	Tag                string    `json:"tag"`
	DurationMinutes    int       `json:"duration"`
	StartedAt          time.Time `json:"startTime"`
	Status             Status    `json:"status"`
	ElapsedSeconds     int       `json:"elapsedSeconds"`
	TotalPausedSeconds int       `json:"totalPaused"`
	Note               string    `json:"note,omitempty"`
}

// wire converts the session to its response shape at the given instant.
func (s *Session) wire(now time.Time) *wireTimer {
	totalPaused := s.TotalPaused
	if s.Status == StatusPaused {
		totalPaused += now.Sub(s.PausedAt)
	}
	return &wireTimer{
		ID:                 s.ID,
		Tag:                s.Tag,
		DurationMinutes:    s.DurationMinutes,
		StartedAt:          s.StartedAt,
		Status:             s.Status,
		ElapsedSeconds:     s.ElapsedSeconds(now),
		TotalPausedSeconds: int(totalPaused / time.Second),
		Note:               s.Note,
	}
}

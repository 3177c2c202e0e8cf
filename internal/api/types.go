// Package api provides the HTTP and WebSocket clients for the WorkPulse
// timer backend. Types mirror the backend wire protocol without importing
// server packages.
package api

import "time"

// Status is the lifecycle state of a timer session as reported by the
// backend. Completed and cancelled timers appear only in mutation
// responses; GET /timers/current never returns them.
type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Live reports whether the status is one of the two non-terminal states.
func (s Status) Live() bool {
	return s == StatusRunning || s == StatusPaused
}

// Timer is the backend's authoritative record of a timer session.
type Timer struct {
	ID                 string    `json:"id"`
	Tag                string    `json:"tag"`
	DurationMinutes    int       `json:"duration"` // 0 = untimed
	StartedAt          time.Time `json:"startTime"`
	Status             Status    `json:"status"`
	ElapsedSeconds     int       `json:"elapsedSeconds"`
	TotalPausedSeconds int       `json:"totalPaused"`
	Note               string    `json:"note,omitempty"`
}

// CurrentResponse is the shape returned by GET /timers/current.
type CurrentResponse struct {
	IsRunning bool   `json:"isRunning"`
	Timer     *Timer `json:"timer,omitempty"`
}

// timerResponse is the envelope for all mutation responses.
type timerResponse struct {
	Timer *Timer `json:"timer"`
}

// startRequest is the body for POST /timers/start.
type startRequest struct {
	Tag      string `json:"tag"`
	Duration int    `json:"duration"`
}

// noteRequest is the body for POST /timers/{id}/complete and /cancel.
type noteRequest struct {
	Note string `json:"note,omitempty"`
}

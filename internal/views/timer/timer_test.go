package timer

import (
	"strings"
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{5 * time.Second, "00:05"},
		{90 * time.Second, "01:30"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "01:00:00"},
		{2*time.Hour + 3*time.Minute + 4*time.Second, "02:03:04"},
		{-3 * time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.d); got != tt.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		elapsed  time.Duration
		duration int
		want     float64
	}{
		{0, 25, 0},
		{12*time.Minute + 30*time.Second, 25, 0.5},
		{25 * time.Minute, 25, 1},
		{30 * time.Minute, 25, 1}, // clamped
		{10 * time.Minute, 0, 0}, // untimed
		{-time.Minute, 25, 0},    // clamped low
	}
	for _, tt := range tests {
		if got := Fraction(tt.elapsed, tt.duration); got != tt.want {
			t.Errorf("Fraction(%v, %d) = %v, want %v", tt.elapsed, tt.duration, got, tt.want)
		}
	}
}

func TestViewStates(t *testing.T) {
	m := New()
	if v := m.View(); !strings.Contains(v, "IDLE") {
		t.Error("idle card should show the IDLE badge")
	}

	m.Status = "running"
	m.Tag = "sprint planning"
	m.Elapsed = 95 * time.Second
	m.DurationMinutes = 25
	v := m.View()
	for _, want := range []string{"RUNNING", "01:35", "sprint planning", "target 25:00"} {
		if !strings.Contains(v, want) {
			t.Errorf("running card missing %q", want)
		}
	}

	m.Status = "paused"
	if v := m.View(); !strings.Contains(v, "PAUSED") {
		t.Error("paused card should show the PAUSED badge")
	}
}

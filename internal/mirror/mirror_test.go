package mirror

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingSlot(t *testing.T) {
	s := NewStore(t.TempDir())
	m, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m != nil {
		t.Fatalf("missing slot should load as nil, got %+v", m)
	}
}

func TestSaveLoadClear(t *testing.T) {
	s := NewStore(t.TempDir())
	want := &Mirror{
		SessionID:          "abc-123",
		Tag:                "quarterly report",
		DurationMinutes:    25,
		StartedAt:          time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		BackendStartedAt:   time.Date(2026, 3, 9, 9, 58, 12, 0, time.UTC),
		TotalPausedSeconds: 42,
	}

	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if got.SessionID != want.SessionID || got.Tag != want.Tag ||
		got.DurationMinutes != want.DurationMinutes ||
		got.TotalPausedSeconds != want.TotalPausedSeconds {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
	if !got.StartedAt.Equal(want.StartedAt) || !got.BackendStartedAt.Equal(want.BackendStartedAt) {
		t.Fatalf("timestamps did not survive the round trip: got %+v", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err = s.Load()
	if err != nil || got != nil {
		t.Fatalf("slot should be absent after Clear, got %+v, %v", got, err)
	}

	// Clearing again is a no-op.
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	s := NewStore(dir)
	if err := s.Save(&Mirror{SessionID: "x"}); err != nil {
		t.Fatalf("Save into missing dir: %v", err)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("slot file missing: %v", err)
	}
}

func TestLoadCorruptSlot(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err == nil {
		t.Fatal("corrupt slot should return an error")
	}
}

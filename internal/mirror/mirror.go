// Package mirror persists the single-slot local snapshot of the running
// timer session. The slot is presentation-only and disposable: losing it
// costs at most one poll interval of accuracy, never server state.
package mirror

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	slotFileName = "timer.json"
	appDirName   = "workpulse-focus"
)

// Mirror is the client-local snapshot of a running session. StartedAt is a
// LOCAL clock instant chosen so that now−StartedAt reproduces the backend's
// elapsedSeconds at the moment the mirror was created; it is the only field
// the live tick reads. BackendStartedAt and TotalPausedSeconds are retained
// for audit, not for time math.
type Mirror struct {
	SessionID          string    `json:"id"`
	Tag                string    `json:"tag"`
	DurationMinutes    int       `json:"duration"`
	StartedAt          time.Time `json:"startTime"`
	BackendStartedAt   time.Time `json:"backendStartTime"`
	TotalPausedSeconds int       `json:"totalPaused"`
}

// Store reads and writes the mirror slot on disk. It is an explicit,
// injectable value rather than a package-level singleton so tests can
// construct isolated instances.
type Store struct {
	dir string
}

// NewStore creates a Store that keeps the slot file in the given directory.
// The directory is created on the first Save. Pass an empty string to use
// the default XDG state path.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultStateDir()
	}
	return &Store{dir: dir}
}

// Path returns the full path to the slot file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, slotFileName)
}

// Load reads the slot. A missing file means no mirror and returns (nil, nil).
func (s *Store) Load() (*Mirror, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading timer slot: %w", err)
	}
	var m Mirror
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing timer slot: %w", err)
	}
	return &m, nil
}

// Save writes the slot using an atomic temp-file-then-rename pattern.
func (s *Store) Save(m *Mirror) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling timer slot: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".timer-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("renaming timer slot: %w", err)
	}
	committed = true

	return nil
}

// Clear removes the slot. Clearing an already-absent slot is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing timer slot: %w", err)
	}
	return nil
}

// defaultStateDir returns ~/.local/state/workpulse-focus, respecting
// XDG_STATE_HOME if set.
func defaultStateDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}

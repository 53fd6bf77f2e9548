package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/brainsim/internal/brain"
)

// summaryFile is the default session summary filename.
const summaryFile = "session-summary.json"

// Summary is the on-disk record of how a session ended. It holds telemetry
// only; a network cannot be restored from it.
type Summary struct {
	StartedAt time.Time    `json:"started_at"`
	EndedAt   time.Time    `json:"ended_at"`
	Injected  int          `json:"injected"`
	Rewarded  int          `json:"rewarded"`
	Status    brain.Status `json:"status"`
}

// Summary captures the session's current counters and network status.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Summary{
		StartedAt: s.started,
		EndedAt:   time.Now(),
		Injected:  s.injected,
		Rewarded:  s.rewarded,
		Status:    s.net.Status(),
	}
}

// SaveSummary writes the session summary to a JSON file in the given directory.
// The directory must already exist.
func SaveSummary(s *Session, dir string) error {
	data, err := json.MarshalIndent(s.Summary(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session summary: %w", err)
	}

	path := filepath.Join(dir, summaryFile)

	// Write atomically via temp file + rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing session summary temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming session summary file: %w", err)
	}

	return nil
}

// LoadSummary reads the last session summary from the given directory.
// It returns (nil, nil) when no session has been saved yet.
func LoadSummary(dir string) (*Summary, error) {
	data, err := os.ReadFile(filepath.Join(dir, summaryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session summary: %w", err)
	}

	var sum Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, fmt.Errorf("unmarshaling session summary: %w", err)
	}
	return &sum, nil
}

// SummaryFilePath returns the expected path for the summary file in the given directory.
func SummaryFilePath(dir string) string {
	return filepath.Join(dir, summaryFile)
}

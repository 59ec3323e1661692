// Package history persists run records so past provisioning runs can be
// inspected with the history command.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/provision/internal/domain/execution"
)

// keepLimit caps how many runs the history file retains. Old records roll
// off the front when a new run is appended.
const keepLimit = 50

// StepRecord is the persisted outcome of a single step.
type StepRecord struct {
	ID       string        `yaml:"id"`
	Status   string        `yaml:"status"`
	Duration time.Duration `yaml:"duration"`
	Applied  bool          `yaml:"applied"`
	Error    string        `yaml:"error,omitempty"`
}

// Record is the persisted outcome of one provisioning run.
type Record struct {
	ID        string        `yaml:"id"`
	Target    string        `yaml:"target"`
	Host      string        `yaml:"host,omitempty"`
	StartedAt time.Time     `yaml:"started_at"`
	Duration  time.Duration `yaml:"duration"`
	Outcome   string        `yaml:"outcome"`
	Error     string        `yaml:"error,omitempty"`
	Steps     []StepRecord  `yaml:"steps"`
}

// NewRecord builds a run record from an execution report. host is empty for
// local runs.
func NewRecord(target, host string, startedAt time.Time, report *execution.Report) Record {
	record := Record{
		ID:        uuid.NewString(),
		Target:    target,
		Host:      host,
		StartedAt: startedAt.UTC(),
		Duration:  report.Duration(),
		Outcome:   "succeeded",
	}

	if err := report.Err(); err != nil {
		record.Outcome = "failed"
		record.Error = err.Error()
	}

	for _, result := range report.Results() {
		stepRecord := StepRecord{
			ID:       result.StepID().String(),
			Status:   result.Status().String(),
			Duration: result.Duration(),
			Applied:  result.Applied(),
		}
		if err := result.Error(); err != nil {
			stepRecord.Error = err.Error()
		}
		record.Steps = append(record.Steps, stepRecord)
	}

	return record
}

// historyFile is the on-disk document.
type historyFile struct {
	Version int      `yaml:"version"`
	Runs    []Record `yaml:"runs"`
}

// Store reads and writes the YAML history file.
type Store struct {
	path string
}

// NewStore creates a history store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the standard history file location,
// $XDG_STATE_HOME/provision/history.yaml, falling back to
// ~/.local/state/provision/history.yaml.
func DefaultPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "provision", "history.yaml"), nil
}

// Append adds a record to the history file, creating the file if needed.
func (s *Store) Append(ctx context.Context, record Record) error {
	runs, err := s.List(ctx)
	if err != nil {
		return err
	}

	runs = append(runs, record)
	if len(runs) > keepLimit {
		runs = runs[len(runs)-keepLimit:]
	}

	return s.save(historyFile{Version: 1, Runs: runs})
}

// List returns every stored run, oldest first. A missing file is an empty
// history, not an error.
func (s *Store) List(_ context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var file historyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}

	return file.Runs, nil
}

// Recent returns the latest n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	runs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(runs) > n {
		runs = runs[len(runs)-n:]
	}

	// Reverse so the newest run comes first.
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}

	return runs, nil
}

func (s *Store) save(file historyFile) error {
	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	// Write to a temp file and rename so a crash mid-write never leaves a
	// truncated history behind.
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing history: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/provision/internal/adapters/history"
)

func TestHistoryCommand_UseAndShort(t *testing.T) {
	assert.Equal(t, "history", historyCmd.Use)
	assert.Equal(t, "Show past provisioning runs", historyCmd.Short)
}

func TestHistoryCommand_HasFlags(t *testing.T) {
	flags := historyCmd.Flags()

	t.Run("limit flag exists", func(t *testing.T) {
		flag := flags.Lookup("limit")
		require.NotNil(t, flag)
		assert.Equal(t, "20", flag.DefValue)
		assert.Equal(t, "n", flag.Shorthand)
	})

	t.Run("json flag exists", func(t *testing.T) {
		flag := flags.Lookup("json")
		require.NotNil(t, flag)
		assert.Equal(t, "false", flag.DefValue)
	})
}

func TestFormatOutcome(t *testing.T) {
	assert.Equal(t, "✓ succeeded", formatOutcome("succeeded"))
	assert.Equal(t, "✗ failed", formatOutcome("failed"))
	assert.Equal(t, "aborted", formatOutcome("aborted"))
}

func TestFormatHistoryAge(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "just now", formatHistoryAge(now))
	assert.Equal(t, "5m ago", formatHistoryAge(now.Add(-5*time.Minute)))
	assert.Equal(t, "3h ago", formatHistoryAge(now.Add(-3*time.Hour)))
	assert.Equal(t, "2d ago", formatHistoryAge(now.Add(-48*time.Hour)))
	assert.Equal(t, "1w ago", formatHistoryAge(now.Add(-10*24*time.Hour)))

	old := now.Add(-60 * 24 * time.Hour)
	assert.Equal(t, old.Format("Jan 2"), formatHistoryAge(old))
}

func TestFormatStepRecord(t *testing.T) {
	tests := []struct {
		name   string
		record history.StepRecord
		want   string
	}{
		{
			"failed with error",
			history.StepRecord{ID: "tools:install", Status: "failed", Error: "npm exploded"},
			"✗ tools:install: npm exploded",
		},
		{
			"failed without error",
			history.StepRecord{ID: "tools:install", Status: "failed"},
			"✗ tools:install",
		},
		{
			"skipped",
			history.StepRecord{ID: "shell:env", Status: "skipped"},
			"- shell:env (skipped)",
		},
		{
			"applied",
			history.StepRecord{ID: "packages:install", Status: "satisfied", Applied: true, Duration: 1500 * time.Millisecond},
			"✓ packages:install (applied in 1.5s)",
		},
		{
			"already satisfied",
			history.StepRecord{ID: "shell:env", Status: "satisfied"},
			"✓ shell:env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatStepRecord(tt.record))
		})
	}
}

func TestHistoryEntries(t *testing.T) {
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	runs := []history.Record{
		{
			ID:        "run-1",
			Target:    "work",
			Host:      "admin@build-1",
			StartedAt: started,
			Duration:  90 * time.Second,
			Outcome:   "failed",
			Error:     "step 2 (tools:install) failed: npm exploded",
			Steps: []history.StepRecord{
				{ID: "packages:install", Status: "satisfied", Duration: 80 * time.Second, Applied: true},
				{ID: "tools:install", Status: "failed", Error: "npm exploded"},
			},
		},
	}

	entries := historyEntries(runs)

	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "run-1", entry.ID)
	assert.Equal(t, "work", entry.Target)
	assert.Equal(t, "admin@build-1", entry.Host)
	assert.Equal(t, started, entry.StartedAt)
	assert.Equal(t, "1m30s", entry.Duration)
	assert.Equal(t, "failed", entry.Outcome)
	require.Len(t, entry.Steps, 2)
	assert.Equal(t, "1m20s", entry.Steps[0].Duration)
	assert.True(t, entry.Steps[0].Applied)
	assert.Equal(t, "npm exploded", entry.Steps[1].Error)
}

func TestRunHistory_Empty(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	output := captureStdout(t, func() {
		require.NoError(t, runHistory(nil, nil))
	})

	assert.Contains(t, output, "No provisioning runs recorded yet.")
}

func seedHistoryRun(t *testing.T) {
	t.Helper()

	path, err := history.DefaultPath()
	require.NoError(t, err)

	record := history.Record{
		ID:        "run-1",
		Target:    "work",
		Host:      "admin@build-1",
		StartedAt: time.Now().Add(-2 * time.Hour).UTC(),
		Duration:  90 * time.Second,
		Outcome:   "succeeded",
		Steps: []history.StepRecord{
			{ID: "packages:install", Status: "satisfied", Duration: 80 * time.Second, Applied: true},
			{ID: "shell:env", Status: "satisfied"},
		},
	}
	require.NoError(t, history.NewStore(path).Append(context.Background(), record))
}

func TestRunHistory_ShowsRuns(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	seedHistoryRun(t)

	output := captureStdout(t, func() {
		require.NoError(t, runHistory(nil, nil))
	})

	assert.Contains(t, output, "WHEN")
	assert.Contains(t, output, "work")
	assert.Contains(t, output, "admin@build-1")
	assert.Contains(t, output, "✓ succeeded")
	assert.Contains(t, output, "1m30s")
	assert.Contains(t, output, "Showing 1 runs")
}

func TestRunHistory_JSON(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	seedHistoryRun(t)

	originalJSON := historyJSON
	defer func() { historyJSON = originalJSON }()
	historyJSON = true

	output := captureStdout(t, func() {
		require.NoError(t, runHistory(nil, nil))
	})

	var entries []historyEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "run-1", entries[0].ID)
	assert.Equal(t, "succeeded", entries[0].Outcome)
	require.Len(t, entries[0].Steps, 2)
	assert.Equal(t, "packages:install", entries[0].Steps[0].ID)
}

func TestRunHistory_VerboseShowsSteps(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	seedHistoryRun(t)

	originalVerbose := verbose
	defer func() { verbose = originalVerbose }()
	verbose = true

	output := captureStdout(t, func() {
		require.NoError(t, runHistory(nil, nil))
	})

	assert.Contains(t, output, "─── run-1 ───")
	assert.Contains(t, output, "Target:   work")
	assert.Contains(t, output, "Host:     admin@build-1")
	assert.Contains(t, output, "✓ packages:install (applied in 1m20s)")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/provision/internal/adapters/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past provisioning runs",
	Long: `Display the outcomes of past provisioning runs.

Every run (except dry runs) is recorded with its target, host, duration
and per-step results. History lives in $XDG_STATE_HOME/provision/ and
keeps the most recent runs.

Examples:
  provision history              # Show recent runs
  provision history --limit 50   # Show more runs
  provision history --json       # JSON output
  provision history -v           # Per-step detail`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyJSON  bool
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
}

// historyEntry is the JSON view of a run record.
type historyEntry struct {
	ID        string             `json:"id"`
	Target    string             `json:"target,omitempty"`
	Host      string             `json:"host,omitempty"`
	StartedAt time.Time          `json:"started_at"`
	Duration  string             `json:"duration"`
	Outcome   string             `json:"outcome"`
	Error     string             `json:"error,omitempty"`
	Steps     []historyStepEntry `json:"steps"`
}

// historyStepEntry is the JSON view of one step within a run.
type historyStepEntry struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Applied  bool   `json:"applied"`
	Error    string `json:"error,omitempty"`
}

func runHistory(_ *cobra.Command, _ []string) error {
	path, err := history.DefaultPath()
	if err != nil {
		return err
	}

	store := history.NewStore(path)
	runs, err := store.Recent(context.Background(), historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No provisioning runs recorded yet.")
		return nil
	}

	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(historyEntries(runs))
	}

	outputHistoryText(runs)
	return nil
}

func historyEntries(runs []history.Record) []historyEntry {
	entries := make([]historyEntry, 0, len(runs))
	for _, run := range runs {
		entry := historyEntry{
			ID:        run.ID,
			Target:    run.Target,
			Host:      run.Host,
			StartedAt: run.StartedAt,
			Duration:  formatRunDuration(run.Duration),
			Outcome:   run.Outcome,
			Error:     run.Error,
		}
		for _, s := range run.Steps {
			entry.Steps = append(entry.Steps, historyStepEntry{
				ID:       s.ID,
				Status:   s.Status,
				Duration: formatRunDuration(s.Duration),
				Applied:  s.Applied,
				Error:    s.Error,
			})
		}
		entries = append(entries, entry)
	}
	return entries
}

func outputHistoryText(runs []history.Record) {
	if verbose {
		for i, run := range runs {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("─── %s ───\n", run.ID)
			fmt.Printf("  Time:     %s (%s)\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), formatHistoryAge(run.StartedAt))
			if run.Target != "" {
				fmt.Printf("  Target:   %s\n", run.Target)
			}
			if run.Host != "" {
				fmt.Printf("  Host:     %s\n", run.Host)
			}
			fmt.Printf("  Outcome:  %s\n", formatOutcome(run.Outcome))
			fmt.Printf("  Duration: %s\n", formatRunDuration(run.Duration))
			if len(run.Steps) > 0 {
				fmt.Printf("  Steps:\n")
				for _, s := range run.Steps {
					fmt.Printf("    %s\n", formatStepRecord(s))
				}
			}
			if run.Error != "" {
				fmt.Printf("  Error:    %s\n", run.Error)
			}
		}
		fmt.Printf("\nShowing %d runs\n", len(runs))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tTARGET\tHOST\tOUTCOME\tSTEPS\tDURATION")
	for _, run := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			formatHistoryAge(run.StartedAt),
			run.Target,
			run.Host,
			formatOutcome(run.Outcome),
			len(run.Steps),
			formatRunDuration(run.Duration),
		)
	}
	_ = w.Flush()

	fmt.Printf("\nShowing %d runs\n", len(runs))
}

func formatStepRecord(s history.StepRecord) string {
	switch s.Status {
	case "failed":
		if s.Error != "" {
			return fmt.Sprintf("✗ %s: %s", s.ID, s.Error)
		}
		return fmt.Sprintf("✗ %s", s.ID)
	case "skipped":
		return fmt.Sprintf("- %s (skipped)", s.ID)
	default:
		if s.Applied {
			return fmt.Sprintf("✓ %s (applied in %s)", s.ID, formatRunDuration(s.Duration))
		}
		return fmt.Sprintf("✓ %s", s.ID)
	}
}

func formatOutcome(outcome string) string {
	switch outcome {
	case "succeeded":
		return "✓ succeeded"
	case "failed":
		return "✗ failed"
	default:
		return outcome
	}
}

func formatRunDuration(d time.Duration) string {
	if d < 10*time.Millisecond {
		return d.String()
	}
	return d.Round(10 * time.Millisecond).String()
}

func formatHistoryAge(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	if d < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	if d < 30*24*time.Hour {
		return fmt.Sprintf("%dw ago", int(d.Hours()/(24*7)))
	}
	return t.Format("Jan 2")
}

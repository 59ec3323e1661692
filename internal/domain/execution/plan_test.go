package execution

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/provision/internal/domain/step"
)

func pendingEntry(t *testing.T, id string) PlanEntry {
	t.Helper()
	change := step.NewChange(step.ChangeTypeInstall, "package", "git", "apt")
	return NewPlanEntry(newConfigurableStep(id), step.StatusNeedsApply, change)
}

func satisfiedEntry(t *testing.T, id string) PlanEntry {
	t.Helper()
	return NewPlanEntry(newConfigurableStep(id), step.StatusSatisfied, step.Change{})
}

func TestPlan_Empty(t *testing.T) {
	plan := NewPlan()
	if !plan.IsEmpty() {
		t.Error("new plan should be empty")
	}
	if plan.HasChanges() {
		t.Error("empty plan should report no changes")
	}
}

func TestPlan_AddAndLen(t *testing.T) {
	plan := NewPlan()
	plan.Add(pendingEntry(t, "packages:install"))
	plan.Add(satisfiedEntry(t, "tools:install"))

	if plan.Len() != 2 {
		t.Errorf("Len() = %d, want 2", plan.Len())
	}
	if plan.IsEmpty() {
		t.Error("plan with entries should not be empty")
	}
}

func TestPlan_EntriesReturnsCopy(t *testing.T) {
	plan := NewPlan()
	plan.Add(pendingEntry(t, "packages:install"))

	entries := plan.Entries()
	entries[0] = satisfiedEntry(t, "shell:env")

	if plan.Entries()[0].Step().ID().String() != "packages:install" {
		t.Error("mutating the returned slice should not affect the plan")
	}
}

func TestPlan_NeedsApply(t *testing.T) {
	plan := NewPlan()
	plan.Add(satisfiedEntry(t, "packages:install"))
	plan.Add(pendingEntry(t, "tools:install"))
	plan.Add(pendingEntry(t, "shell:env"))

	pending := plan.NeedsApply()
	if len(pending) != 2 {
		t.Fatalf("NeedsApply() len = %d, want 2", len(pending))
	}
	if pending[0].Step().ID().String() != "tools:install" {
		t.Errorf("pending[0] = %s, want tools:install", pending[0].Step().ID())
	}
}

func TestPlan_NeedsApply_CountsUnknown(t *testing.T) {
	// An unknown status means the check could not decide, so the step
	// still runs.
	plan := NewPlan()
	plan.Add(NewPlanEntry(newConfigurableStep("tools:install"),
		step.StatusUnknown, step.Change{}))

	if len(plan.NeedsApply()) != 1 {
		t.Error("unknown entries should count as pending work")
	}
	if !plan.HasChanges() {
		t.Error("plan with unknown entries should report changes")
	}
}

func TestPlan_HasChanges(t *testing.T) {
	plan := NewPlan()
	plan.Add(satisfiedEntry(t, "packages:install"))
	if plan.HasChanges() {
		t.Error("fully satisfied plan should report no changes")
	}

	plan.Add(pendingEntry(t, "tools:install"))
	if !plan.HasChanges() {
		t.Error("plan with pending entries should report changes")
	}
}

func TestPlan_Summary(t *testing.T) {
	plan := NewPlan()
	plan.Add(satisfiedEntry(t, "packages:install"))
	plan.Add(pendingEntry(t, "tools:install"))
	plan.Add(pendingEntry(t, "dotfiles:clone"))
	plan.Add(NewPlanEntry(newConfigurableStep("shell:env"),
		step.StatusUnknown, step.Change{}))

	summary := plan.Summary()
	if summary.Total != 4 {
		t.Errorf("Total = %d, want 4", summary.Total)
	}
	if summary.Satisfied != 1 {
		t.Errorf("Satisfied = %d, want 1", summary.Satisfied)
	}
	if summary.NeedsApply != 2 {
		t.Errorf("NeedsApply = %d, want 2", summary.NeedsApply)
	}
	if summary.Unknown != 1 {
		t.Errorf("Unknown = %d, want 1", summary.Unknown)
	}
}

func TestPlanEntry_CheckError(t *testing.T) {
	entry := NewPlanEntry(newConfigurableStep("tools:install"),
		step.StatusUnknown, step.Change{})
	if entry.CheckError() != nil {
		t.Error("entry should have no check error by default")
	}

	checkErr := errors.New("npm not found")
	withErr := entry.WithCheckError(checkErr)
	if !errors.Is(withErr.CheckError(), checkErr) {
		t.Errorf("CheckError() = %v, want %v", withErr.CheckError(), checkErr)
	}
	if entry.CheckError() != nil {
		t.Error("WithCheckError should not mutate the original entry")
	}
}

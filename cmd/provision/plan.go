package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/provision/internal/app"
	"github.com/felixgeelhaar/provision/internal/ports"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what changes provision would make",
	Long: `Plan loads the manifest and shows what a run would change.

This command:
1. Loads the manifest and resolves the target
2. Compiles it into executable steps
3. Checks current machine state
4. Shows what would be changed (without making changes)`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

var (
	planManifestPath string
	planTarget       string
)

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planManifestPath, "manifest", "m", "provision.yaml", "Path to the manifest")
	planCmd.Flags().StringVarP(&planTarget, "target", "t", "", "Manifest target to plan")
}

func runPlan(_ *cobra.Command, _ []string) error {
	ctx := ports.ContextWithLogger(context.Background(), newLogger())

	p := app.New(os.Stdout)

	plan, err := p.Plan(ctx, planManifestPath, planTarget)
	if err != nil {
		return err
	}

	p.PrintPlan(plan)
	return nil
}

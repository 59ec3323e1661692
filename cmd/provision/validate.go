package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/provision/internal/app"
	"github.com/felixgeelhaar/provision/internal/ports"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a manifest without applying",
	Long: `Validate checks the manifest for errors without making changes.

This command is designed for CI pipelines to catch manifest problems
before they break a provisioning run. With --check-remote it also
verifies that the dotfiles repository answers over the network.

Exit codes:
  0    - Valid manifest
  254  - The manifest could not be read or has validation errors

Examples:
  provision validate
  provision validate --manifest dev.yaml --target work
  provision validate --json
  provision validate --check-remote`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var (
	validateManifestPath string
	validateTarget       string
	validateJSON         bool
	validateStrict       bool
	validateCheckRemote  bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateManifestPath, "manifest", "m", "provision.yaml", "Path to the manifest")
	validateCmd.Flags().StringVarP(&validateTarget, "target", "t", "", "Manifest target to validate")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output results as JSON")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().BoolVar(&validateCheckRemote, "check-remote", false, "Verify the dotfiles repository is reachable")
}

func runValidate(_ *cobra.Command, _ []string) error {
	ctx := ports.ContextWithLogger(context.Background(), newLogger())

	p := app.New(os.Stdout)

	opts := app.ValidateOptions{
		CheckRemote: validateCheckRemote,
	}

	result, err := p.Validate(ctx, validateManifestPath, validateTarget, opts)
	if err != nil {
		if validateJSON {
			outputValidationJSON(os.Stdout, nil, err)
		} else {
			printError(err)
		}
		os.Exit(exitManifest)
	}

	failed := !result.Valid() || (validateStrict && len(result.Warnings) > 0)

	if validateJSON {
		outputValidationJSON(os.Stdout, result, nil)
	} else {
		outputValidationText(os.Stdout, result)
	}

	if failed {
		os.Exit(exitManifest)
	}

	return nil
}

func outputValidationJSON(out io.Writer, result *app.ValidationResult, err error) {
	output := struct {
		Valid    bool     `json:"valid"`
		Errors   []string `json:"errors,omitempty"`
		Warnings []string `json:"warnings,omitempty"`
		Info     []string `json:"info,omitempty"`
		Error    string   `json:"error,omitempty"`
	}{}

	if err != nil {
		output.Valid = false
		output.Error = err.Error()
	} else if result != nil {
		output.Valid = result.Valid()
		output.Errors = result.Errors
		output.Warnings = result.Warnings
		output.Info = result.Info
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(output)
}

func outputValidationText(out io.Writer, result *app.ValidationResult) {
	hasIssues := len(result.Errors) > 0 || len(result.Warnings) > 0

	if !hasIssues {
		fmt.Fprintln(out, "✓ Manifest is valid")
		for _, info := range result.Info {
			fmt.Fprintf(out, "  • %s\n", info)
		}
		return
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(out, "✗ Validation errors:")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  ✗ %s\n", e)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, "⚠ Warnings:")
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  ⚠ %s\n", w)
		}
	}

	if len(result.Info) > 0 {
		fmt.Fprintln(out, "ℹ Info:")
		for _, i := range result.Info {
			fmt.Fprintf(out, "  • %s\n", i)
		}
	}
}

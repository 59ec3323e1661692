package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter manifest",
	Long: `Init writes a commented starter manifest to get a new machine going.

The generated file installs a couple of common packages and documents
every other setting as a comment, so uncommenting a section is all it
takes to enable it.

Examples:
  provision init                     # Write provision.yaml
  provision init --manifest dev.yaml # Write to a different path
  provision init --force             # Overwrite an existing file`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initManifestPath string
	initForce        bool
)

func init() {
	initCmd.Flags().StringVarP(&initManifestPath, "manifest", "m", "provision.yaml", "Path to write the manifest to")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing manifest")

	rootCmd.AddCommand(initCmd)
}

// starterManifest is the template init writes. Only the packages section is
// active so a fresh manifest plans cleanly; everything else is a documented
// comment.
const starterManifest = `# Provision manifest.
# Preview with 'provision plan', apply with 'provision'.

# OS packages, installed in a single package manager call. The package
# manager is detected from the platform; set package_manager to override.
packages:
  - git
  - curl
# package_manager: brew

# Global npm tools. Entries may pin a version as name@version.
# global_tools:
#   - typescript
#   - prettier@3.3.0

# Dotfiles repository, cloned and set up after packages and tools.
# dotfiles_url: git@github.com:you/dotfiles.git
# dotfiles_ref: main
# dotfiles_dir: ~/dotfiles
# setup_script: install.sh

# Files removed before the clone so stale configs don't shadow the repo.
# remove_files:
#   - ~/.zshrc

# Environment variables, exported from a managed block in the profile.
# env:
#   EDITOR: nvim
# env_file: ~/.profile

# Targets overlay the base manifest per machine: lists append, env merges,
# scalars override. Select one with --target.
# targets:
#   work:
#     packages:
#       - docker
#     env:
#       NPM_CONFIG_REGISTRY: https://npm.example.com
`

func runInit(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(initManifestPath); err == nil && !initForce {
		fmt.Printf("%s already exists.\n", initManifestPath)
		fmt.Println("Use 'provision plan' to review it, or pass --force to overwrite.")
		return nil
	}

	if err := os.WriteFile(initManifestPath, []byte(starterManifest), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", initManifestPath, err)
	}

	fmt.Printf("Manifest created: %s\n", initManifestPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  provision plan  - Review what would change")
	fmt.Println("  provision       - Apply the manifest")

	return nil
}

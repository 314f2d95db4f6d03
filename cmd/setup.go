package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/profile"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure sourcereel (re-run anytime to edit settings)",
	// Bypass the normal PersistentPreRunE so setup works before profile exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd, false)
	},
}

// runSetup runs the interactive setup wizard.
// If firstRun is true, a welcome message is shown.
func runSetup(cmd *cobra.Command, firstRun bool) error {
	if firstRun {
		cmd.Println()
		cmd.Println("  Welcome to sourcereel! Let's get you set up.")
	}

	// Load existing profile as defaults if present.
	var existing *profile.Profile
	if profile.Exists() {
		p, err := profile.Load()
		if err == nil {
			existing = p
		}
	}

	prof, err := profile.RunSetup(os.Stdin, cmd.OutOrStdout(), existing)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	if err := profile.Save(prof); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	cmd.Println("  ✓ Profile saved.")
	cmd.Println("  Setup complete. Run 'sourcereel start' to begin recording.")
	cmd.Println()
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

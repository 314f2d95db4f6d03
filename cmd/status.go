package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/bundle"
	"github.com/fakeyudi/sourcereel/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the recording status and workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}

		s, err := store.Load()
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				cmd.Println("no active session")
				return nil
			}
			return err
		}

		cmd.Printf("Status: %s\n", s.Status)
		cmd.Printf("Duration: %s\n", bundle.FormatDuration(s.Timer.Duration(clk.Now())))
		cmd.Printf("Inputs: %d\n", len(s.Inputs))
		cmd.Printf("Deltas: %d\n", len(s.Deltas))
		cmd.Printf("Chapter: %d\n", s.Workspace.Chapter)
		cmd.Printf("Library: %s\n", s.Workspace.ExternalLibrary)
		cmd.Printf("Active tab: %s\n", s.Workspace.ActiveTab)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

package cmd

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/bundle"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sourcecasts in the library, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := openLibrary()
		if err != nil {
			return err
		}
		defer lib.Close()

		entries, err := lib.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			cmd.Println("No sourcecasts in the library.")
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "TITLE", "DURATION", "AUTHOR", "RECORDED")
		for _, e := range entries {
			t.Row(e.ID, e.Title, bundle.FormatDuration(e.Duration), e.Author,
				e.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		cmd.Println(t.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/recorder"
	"github.com/fakeyudi/sourcereel/internal/session"
)

var discardAll bool

var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Throw away the recording in progress",
	Long: `Throw away the recording in progress without writing a sourcecast.

The workspace is kept for the next recording. With --all the whole session
is removed, workspace included, and the next command starts from defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := session.NewSessionStore()
		if err != nil {
			return err
		}

		if discardAll {
			if err := store.Delete(); err != nil {
				return err
			}
			cmd.Println("Session removed.")
			return nil
		}

		err = store.Update(func(s *session.Session) (*session.Session, error) {
			if err := requireRecording(s); err != nil {
				return nil, err
			}
			if err := recorder.New(s, clk).Discard(); err != nil {
				return nil, err
			}
			return s, nil
		})
		if err != nil {
			return err
		}
		cmd.Println("Recording discarded.")
		return nil
	},
}

func init() {
	discardCmd.Flags().BoolVar(&discardAll, "all", false, "also remove the saved workspace")
	rootCmd.AddCommand(discardCmd)
}

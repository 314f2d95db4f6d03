package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/bundle"
	"github.com/fakeyudi/sourcereel/internal/recorder"
	"github.com/fakeyudi/sourcereel/internal/session"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the recording timer",
	Long: `Pause the recording timer.

While paused nothing is recorded. The recording so far can be previewed with
'sourcereel play session' and continued from any earlier point with
'sourcereel resume --from'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var at time.Duration
		err := updateSession(func(s *session.Session) (*session.Session, error) {
			if err := requireRecording(s); err != nil {
				return nil, err
			}
			rec := recorder.New(s, clk)
			if err := rec.Pause(); err != nil {
				return nil, err
			}
			at = rec.Duration()
			return s, nil
		})
		if err != nil {
			return err
		}

		cmd.Printf("Recording paused at %s.\n", bundle.FormatDuration(at))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
}

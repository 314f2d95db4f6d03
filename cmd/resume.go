package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/bundle"
	"github.com/fakeyudi/sourcereel/internal/playback"
	"github.com/fakeyudi/sourcereel/internal/recorder"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

var resumeFrom time.Duration

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused recording",
	Long: `Resume a paused recording.

With --from the recording continues from an earlier time, usually where a
preview was stopped: everything recorded after it is dropped and the
workspace is rebuilt to its state at that time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var at time.Duration
		var droppedIn, droppedDl int
		err := updateSession(func(s *session.Session) (*session.Session, error) {
			if err := requireRecording(s); err != nil {
				return nil, err
			}
			rec := recorder.New(s, clk)
			if !cmd.Flags().Changed("from") {
				if err := rec.Resume(); err != nil {
					return nil, err
				}
				at = rec.Duration()
				return s, nil
			}

			var err error
			droppedIn, droppedDl, err = rec.ResumeFrom(resumeFrom)
			if err != nil {
				return nil, err
			}
			at = rec.Duration()
			state, err := replayWorkspace(s, at)
			if err != nil {
				return nil, err
			}
			s.Workspace = state
			return s, nil
		})
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("from") {
			cmd.Printf("Recording resumed at %s (dropped %d input(s), %d delta(s)).\n",
				bundle.FormatDuration(at), droppedIn, droppedDl)
			return nil
		}
		cmd.Printf("Recording resumed at %s.\n", bundle.FormatDuration(at))
		return nil
	},
}

// replayWorkspace rebuilds the workspace a recording had reached at t by
// replaying its log from the initial state.
func replayWorkspace(s *session.Session, t time.Duration) (workspace.State, error) {
	data := reel.PlaybackData{Init: s.Init, Inputs: s.Inputs, Deltas: s.Deltas}
	ws := workspace.New(s.Workspace)
	d, err := playback.New(data, ws, clk)
	if err != nil {
		return workspace.State{}, fmt.Errorf("rebuild workspace: %w", err)
	}
	d.Seek(t)
	return ws.State(), nil
}

func init() {
	resumeCmd.Flags().DurationVar(&resumeFrom, "from", 0, "continue from this time, dropping everything recorded after it")
	rootCmd.AddCommand(resumeCmd)
}

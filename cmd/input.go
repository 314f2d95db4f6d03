package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/bundle"
	"github.com/fakeyudi/sourcereel/internal/recorder"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

var inputCmd = &cobra.Command{
	Use:   "input",
	Short: "Act on the workspace, recording the action while a recording runs",
}

// applyInput runs act against the workspace through the recording handlers
// and persists the result.
func applyInput(cmd *cobra.Command, act func(h reel.Handlers)) error {
	var (
		recorded *reel.Input
		status   reel.RecordingStatus
	)
	err := updateSession(func(cur *session.Session) (*session.Session, error) {
		s := orNewSession(cur)
		ws := workspace.New(s.Workspace)
		before := len(s.Inputs)
		act(recorder.Wrap(ws, recorder.New(s, clk)))
		s.Workspace = ws.State()

		if len(s.Inputs) > before {
			in := s.Inputs[len(s.Inputs)-1]
			recorded = &in
		}
		status = s.Status
		return s, nil
	})
	if err != nil {
		return err
	}

	if recorded != nil {
		cmd.Printf("%s (recorded at %s)\n", recorded.Describe(), bundle.FormatDuration(recorded.Time))
	} else {
		cmd.Printf("Applied (%s, not recorded).\n", status)
	}
	return nil
}

var inputChapterCmd = &cobra.Command{
	Use:   "chapter <n>",
	Short: "Switch the language chapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < reel.MinChapter || n > reel.MaxChapter {
			return fmt.Errorf("chapter must be between %d and %d, got %q", reel.MinChapter, reel.MaxChapter, args[0])
		}
		return applyInput(cmd, func(h reel.Handlers) { h.ChapterSelect(n) })
	},
}

var inputLibraryCmd = &cobra.Command{
	Use:   "library <name>",
	Short: "Load an external library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := parseLibrary(args[0])
		if err != nil {
			return err
		}
		return applyInput(cmd, func(h reel.Handlers) { h.ExternalLibrarySelect(lib) })
	},
}

var inputTabCmd = &cobra.Command{
	Use:   "tab <id>",
	Short: "Switch the active side content tab",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tab, err := parseTab(args[0])
		if err != nil {
			return err
		}
		return applyInput(cmd, func(h reel.Handlers) { h.ActiveTabChange(tab) })
	},
}

var inputRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the program in the editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyInput(cmd, func(h reel.Handlers) { h.KeyboardCommand(reel.KeyboardCommandRun) })
	},
}

func init() {
	inputCmd.AddCommand(inputChapterCmd, inputLibraryCmd, inputTabCmd, inputRunCmd)
	rootCmd.AddCommand(inputCmd)
}

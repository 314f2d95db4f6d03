package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/editor"
	"github.com/fakeyudi/sourcereel/internal/recorder"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

var (
	startChapter int
	startLibrary string
	startFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin recording from the current workspace",
	Long: `Begin recording from the current workspace.

The chapter, external library and editor contents at this moment become the
initial state every playback resets to. --chapter, --library and --file adjust
the workspace first and are not recorded as inputs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var started reel.Init
		err := updateSession(func(cur *session.Session) (*session.Session, error) {
			s := orNewSession(cur)
			if s.Status != reel.NotRecording {
				return nil, fmt.Errorf("%w: run 'sourcereel stop' first", recorder.ErrAlreadyRecording)
			}

			ws := workspace.New(s.Workspace)
			if cmd.Flags().Changed("chapter") {
				if startChapter < reel.MinChapter || startChapter > reel.MaxChapter {
					return nil, fmt.Errorf("chapter must be between %d and %d", reel.MinChapter, reel.MaxChapter)
				}
				ws.ChapterSelect(startChapter)
			}
			if startLibrary != "" {
				lib, err := parseLibrary(startLibrary)
				if err != nil {
					return nil, err
				}
				ws.ExternalLibrarySelect(lib)
			}
			if startFile != "" {
				data, err := os.ReadFile(startFile)
				if err != nil {
					return nil, fmt.Errorf("read editor file: %w", err)
				}
				ws.ApplyDeltas(editor.Diff(ws.EditorValue(), string(data)))
			}

			s.ID = uuid.New().String()
			s.Workspace = ws.State()
			if err := recorder.New(s, clk).Start(s.Workspace.Init()); err != nil {
				return nil, err
			}
			started = *s.Init
			return s, nil
		})
		if err != nil {
			return err
		}

		cmd.Printf("Recording started (chapter %d, library %s).\n", started.Chapter, started.ExternalLibrary)
		return nil
	},
}

func init() {
	startCmd.Flags().IntVar(&startChapter, "chapter", 0, "Chapter to start in (1-4)")
	startCmd.Flags().StringVar(&startLibrary, "library", "", "External library to load (NONE, SOUNDS, PIX&FLIX, BINARYTREES, MACHINELEARNING)")
	startCmd.Flags().StringVar(&startFile, "file", "", "Load the editor from this file before recording")
	rootCmd.AddCommand(startCmd)
}

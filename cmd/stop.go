package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/bundle"
	"github.com/fakeyudi/sourcereel/internal/recorder"
	"github.com/fakeyudi/sourcereel/internal/session"
)

var (
	stopTitle       string
	stopDescription string
	stopAudio       string
	stopFormat      string
	stopNoLibrary   bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Finish the recording and write a sourcecast",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Read the audio before finalizing so a bad path leaves the
		// recording untouched.
		var audio []byte
		if stopAudio != "" {
			var err error
			audio, err = os.ReadFile(stopAudio)
			if err != nil {
				return fmt.Errorf("read audio: %w", err)
			}
		}

		var (
			sc         *bundle.Sourcecast
			outputPath string
		)
		// The bundle is written while the session is locked: a failed write
		// leaves the recording in progress.
		err := updateSession(func(s *session.Session) (*session.Session, error) {
			if err := requireRecording(s); err != nil {
				return nil, err
			}
			id := s.ID
			take, err := recorder.New(s, clk).Finalize()
			if err != nil {
				return nil, err
			}
			sc = newSourcecast(id, take, audio)
			outputPath, err = writeBundle(sc)
			if err != nil {
				return nil, err
			}
			// The workspace stays so the next recording continues from it.
			return s, nil
		})
		if err != nil {
			return err
		}

		cmd.Printf("Recording stopped (%s, %d inputs, %d deltas). Output: %s\n",
			bundle.FormatDuration(sc.Duration), len(sc.Data.Inputs), len(sc.Data.Deltas), outputPath)

		if stopNoLibrary {
			return nil
		}
		lib, err := openLibrary()
		if err != nil {
			warnf(cmd, "library unavailable: %v", err)
			return nil
		}
		defer lib.Close()
		if err := lib.Save(context.Background(), sc); err != nil {
			warnf(cmd, "saving to library: %v", err)
			return nil
		}
		cmd.Printf("Saved to library as %s\n", sc.ID)
		return nil
	},
}

// newSourcecast wraps a finalized take with the stop flags and the profile.
func newSourcecast(id string, take recorder.Take, audio []byte) *bundle.Sourcecast {
	now := clk.Now()
	title := stopTitle
	if title == "" {
		title = "Sourcecast " + now.Format("2006-01-02 15:04")
	}
	sc := &bundle.Sourcecast{
		ID:          id,
		Title:       title,
		Description: stopDescription,
		CreatedAt:   now.UTC(),
		Duration:    take.Duration,
		Audio:       audio,
		Data:        take.Data,
	}
	if prof := GetProfile(); prof != nil {
		sc.Author = prof.Name
	}
	if stopAudio != "" {
		sc.AudioName = filepath.Base(stopAudio)
	}
	return sc
}

// writeBundle renders sc in the configured format into the output directory.
func writeBundle(sc *bundle.Sourcecast) (string, error) {
	cfg := GetConfig()
	format := stopFormat
	if format == "" {
		format = cfg.DefaultFormat
	}
	data, err := bundle.RendererFor(format).Render(sc)
	if err != nil {
		return "", fmt.Errorf("render sourcecast: %w", err)
	}

	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outputDir, "sourcereel-"+clk.Now().Format("20060102-150405")+bundle.Extension(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}
	return path, nil
}

func init() {
	stopCmd.Flags().StringVar(&stopTitle, "title", "", "Title of the sourcecast")
	stopCmd.Flags().StringVar(&stopDescription, "description", "", "Description of the sourcecast")
	stopCmd.Flags().StringVar(&stopAudio, "audio", "", "Audio file narrating the recording")
	stopCmd.Flags().StringVar(&stopFormat, "format", "", "Output format: markdown or json (overrides config)")
	stopCmd.Flags().BoolVar(&stopNoLibrary, "no-library", false, "Do not save the sourcecast into the library")
	rootCmd.AddCommand(stopCmd)
}

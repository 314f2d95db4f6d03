package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/bundle"
	"github.com/fakeyudi/sourcereel/internal/library"
	"github.com/fakeyudi/sourcereel/internal/playback"
	"github.com/fakeyudi/sourcereel/internal/recorder"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
	"github.com/fakeyudi/sourcereel/internal/tui"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

var (
	playPlain bool
	playAt    time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play <file|id|session>",
	Short: "Play a sourcecast from a bundle file or the library",
	Long: `Play a sourcecast from a bundle file or the library.

The reference "session" previews the paused recording in progress. Resume
from the time the preview reached with 'sourcereel resume --from'.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkNotRecording(); err != nil {
			return err
		}

		sc, err := loadSourcecast(cmd, args[0])
		if err != nil {
			return err
		}

		ws := workspace.New(workspace.DefaultState())
		d, err := playback.New(sc.Data, ws, clk, playback.WithDuration(sc.Duration))
		if err != nil {
			return fmt.Errorf("cannot play %s: %w", args[0], err)
		}

		if playPlain || !term.IsTerminal(os.Stdout.Fd()) {
			return replayPlain(cmd, d, ws, sc)
		}
		return tui.Run(sc, d, ws, GetConfig().Tick())
	},
}

// checkNotRecording refuses playback while a recording is live. A paused
// recording may be previewed; it records nothing until resumed.
func checkNotRecording() error {
	store, err := session.NewSessionStore()
	if err != nil {
		return err
	}
	s, err := store.Load()
	if errors.Is(err, session.ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if s.Status == reel.Recording {
		return fmt.Errorf("recording in progress, run 'sourcereel pause' before playing")
	}
	return nil
}

// sessionRef names the paused recording in progress as a play target.
const sessionRef = "session"

// loadSourcecast reads ref as a bundle file, falling back to a library ID.
func loadSourcecast(cmd *cobra.Command, ref string) (*bundle.Sourcecast, error) {
	if ref == sessionRef {
		return previewSession()
	}
	data, err := os.ReadFile(ref)
	if err == nil {
		return bundle.ParserFor(ref).Parse(data)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	lib, err := openLibrary()
	if err != nil {
		return nil, err
	}
	defer lib.Close()
	sc, err := lib.Get(cmd.Context(), ref)
	if errors.Is(err, library.ErrNotFound) {
		return nil, fmt.Errorf("no sourcecast file or library entry named %s", ref)
	}
	return sc, err
}

// previewSession snapshots the paused recording as an unsaved sourcecast.
func previewSession() (*bundle.Sourcecast, error) {
	store, err := session.NewSessionStore()
	if err != nil {
		return nil, err
	}
	s, err := store.Load()
	if errors.Is(err, session.ErrNoSession) {
		return nil, errNoPausedRecording
	}
	if err != nil {
		return nil, err
	}
	take, err := recorder.New(s, clk).Preview()
	if errors.Is(err, recorder.ErrNotPaused) {
		return nil, errNoPausedRecording
	}
	if err != nil {
		return nil, err
	}
	return &bundle.Sourcecast{
		ID:        s.ID,
		Title:     "Recording in progress (paused)",
		CreatedAt: s.CreatedAt,
		Duration:  take.Duration,
		Data:      take.Data,
	}, nil
}

var errNoPausedRecording = errors.New("no paused recording to preview, run 'sourcereel pause' first")

// replayPlain steps through every timestamp up to --at and prints each
// applied action, then the final workspace.
func replayPlain(cmd *cobra.Command, d *playback.Driver, ws *workspace.Workspace, sc *bundle.Sourcecast) error {
	out := cmd.OutOrStdout()
	at := playAt
	if at <= 0 || at > d.End() {
		at = d.End()
	}

	cmd.Printf("▶ %s (%s)\n", sc.Title, bundle.FormatDuration(d.End()))
	logger := log.New(out, "", 0)
	ws.Logger = logger

	logger.SetPrefix("  [" + bundle.FormatDuration(0) + "] ")
	d.Seek(0)
	for _, t := range timestamps(d.Data(), at) {
		logger.SetPrefix("  [" + bundle.FormatDuration(t) + "] ")
		d.Seek(t)
	}
	d.Seek(at)
	ws.Logger = nil

	state := ws.State()
	cmd.Println()
	cmd.Printf("At %s: %d of %d inputs applied\n", bundle.FormatDuration(at), d.Applied(), len(d.Data().Inputs))
	cmd.Printf("Chapter: %d\n", state.Chapter)
	cmd.Printf("Library: %s\n", state.ExternalLibrary)
	cmd.Printf("Active tab: %s\n", state.ActiveTab)
	cmd.Println("Editor:")
	for _, line := range strings.Split(state.EditorValue, "\n") {
		cmd.Println("  " + line)
	}
	if len(state.Output) > 0 {
		cmd.Println("REPL:")
		for _, line := range state.Output {
			cmd.Println("  " + line)
		}
	}
	return nil
}

// timestamps returns the distinct entry times in (0, limit], ascending.
func timestamps(data reel.PlaybackData, limit time.Duration) []time.Duration {
	var ts []time.Duration
	for _, in := range data.Inputs {
		if in.Time > 0 && in.Time <= limit {
			ts = append(ts, in.Time)
		}
	}
	for _, dl := range data.Deltas {
		if dl.Time > 0 && dl.Time <= limit {
			ts = append(ts, dl.Time)
		}
	}
	slices.Sort(ts)
	return slices.Compact(ts)
}

func init() {
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "print the replay instead of opening the player")
	playCmd.Flags().DurationVar(&playAt, "at", 0, "stop a plain replay at this time (default: the end)")
	rootCmd.AddCommand(playCmd)
}

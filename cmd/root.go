package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/sourcereel/internal/clock"
	"github.com/fakeyudi/sourcereel/internal/config"
	"github.com/fakeyudi/sourcereel/internal/library"
	"github.com/fakeyudi/sourcereel/internal/profile"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded user profile.
var activeProfile *profile.Profile

// clk stamps recordings and drives playback. Tests swap in a manual clock.
var clk clock.Clock = clock.System{}

// errNotRecording is returned by commands that need a recording in progress.
var errNotRecording = errors.New("no active recording")

var rootCmd = &cobra.Command{
	Use:   "sourcereel",
	Short: "Record and replay timed coding sessions",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// First-run: profile missing → run setup wizard automatically.
		// Only do this when stdin is an interactive terminal.
		if !profile.Exists() {
			if term.IsTerminal(os.Stdin.Fd()) {
				cmd.Println()
				cmd.Println("  Welcome to sourcereel! Looks like this is your first time.")
				if err := runSetup(cmd, true); err != nil {
					return err
				}
			}
			// Non-interactive (tests, pipes): continue with defaults, no profile required.
		}

		activeProfile = nil
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		var fallback config.Config
		if activeProfile != nil {
			fallback.DefaultFormat = activeProfile.DefaultFormat
			fallback.OutputDir = activeProfile.OutputDir
		}
		var err error
		cfg, err = config.Load(fallback)
		return err
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active user profile.
func GetProfile() *profile.Profile {
	return activeProfile
}

// orNewSession returns cur, or a fresh session holding the default
// workspace when none exists yet.
func orNewSession(cur *session.Session) *session.Session {
	if cur != nil {
		return cur
	}
	state := workspace.DefaultState()
	state.Chapter = GetProfile().Chapter()
	return &session.Session{
		ID:        uuid.New().String(),
		CreatedAt: clk.Now(),
		Status:    reel.NotRecording,
		Inputs:    []reel.Input{},
		Deltas:    []reel.CodeDelta{},
		Workspace: state,
	}
}

// requireRecording fails unless a recording is running or paused.
func requireRecording(cur *session.Session) error {
	if cur == nil || cur.Status == reel.NotRecording {
		return errNotRecording
	}
	return nil
}

// updateSession opens the session store and runs fn under its lock.
func updateSession(fn func(cur *session.Session) (*session.Session, error)) error {
	store, err := session.NewSessionStore()
	if err != nil {
		return err
	}
	return store.Update(fn)
}

// openLibrary opens the configured sourcecast library.
func openLibrary() (*library.Store, error) {
	path := GetConfig().LibraryPath
	if path == "" {
		dir, err := session.DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolving data directory: %w", err)
		}
		path = library.DefaultPath(dir)
	}
	return library.Open(path)
}

// parseLibrary matches name against the known external libraries,
// ignoring case.
func parseLibrary(name string) (reel.ExternalLibrary, error) {
	for _, lib := range reel.ExternalLibraries {
		if strings.EqualFold(string(lib), name) {
			return lib, nil
		}
	}
	return "", fmt.Errorf("unknown external library %q (one of %s)", name, joinValues(reel.ExternalLibraries))
}

// parseTab matches id against the side content tabs, ignoring case.
func parseTab(id string) (reel.SideContentType, error) {
	for _, tab := range reel.SideContentTabs {
		if strings.EqualFold(string(tab), id) {
			return tab, nil
		}
	}
	return "", fmt.Errorf("unknown side content tab %q (one of %s)", id, joinValues(reel.SideContentTabs))
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// warnf writes a warning line to the command's error stream.
func warnf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}

// newLogger returns a logger for per-event lines on the command's error stream.
func newLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "", log.Ltime)
}

// Package profile manages the user's persistent sourcereel profile.
// The profile is stored at ~/.config/sourcereel/profile.json and is created
// once via the interactive setup flow, then referenced on every command.
package profile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fakeyudi/sourcereel/internal/reel"
)

// Profile holds user-level preferences set during first-run setup.
type Profile struct {
	Name           string `json:"name"`            // author shown in sourcecasts
	DefaultFormat  string `json:"default_format"`  // "markdown" | "json"
	OutputDir      string `json:"output_dir"`      // default bundle output dir
	DefaultChapter int    `json:"default_chapter"` // chapter for new recordings
}

// profilePath returns the path to the profile file.
func profilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.json"), nil
}

// ConfigDir returns the sourcereel config directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sourcereel"), nil
}

// Exists reports whether a profile file is present on disk.
func Exists() bool {
	p, err := profilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load reads the profile from disk. Returns an error if the file is missing or malformed.
func Load() (*Profile, error) {
	p, err := profilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("profile not found, run 'sourcereel setup' to configure: %w", err)
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("malformed profile at %s: %w", p, err)
	}
	return &prof, nil
}

// Save writes the profile to disk, creating the config directory if needed.
func Save(prof *Profile) error {
	p, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Chapter returns the profile's default chapter, or the first chapter when
// unset or out of range.
func (p *Profile) Chapter() int {
	if p == nil || p.DefaultChapter < reel.MinChapter || p.DefaultChapter > reel.MaxChapter {
		return reel.MinChapter
	}
	return p.DefaultChapter
}

// RunSetup runs the interactive setup wizard reading answers from in and
// writing prompts to out. If existing is non-nil, it is used as the default
// for each prompt (edit mode).
func RunSetup(in io.Reader, out io.Writer, existing *Profile) (*Profile, error) {
	r := bufio.NewReader(in)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	prof := &Profile{
		DefaultFormat:  "markdown",
		OutputDir:      ".",
		DefaultChapter: reel.MinChapter,
	}
	if existing != nil {
		*prof = *existing
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(out, "  │  sourcereel · first-time setup  │")
	fmt.Fprintln(out, "  └─────────────────────────────────┘")
	fmt.Fprintln(out)

	var err error

	prof.Name, err = ask("  Your name (shown in sourcecasts)", prof.Name)
	if err != nil {
		return nil, err
	}

	format, err := ask("  Default output format (markdown/json)", prof.DefaultFormat)
	if err != nil {
		return nil, err
	}
	if format == "json" {
		prof.DefaultFormat = "json"
	} else {
		prof.DefaultFormat = "markdown"
	}

	prof.OutputDir, err = ask("  Default output directory", prof.OutputDir)
	if err != nil {
		return nil, err
	}

	chapter, err := ask(fmt.Sprintf("  Default chapter (%d-%d)", reel.MinChapter, reel.MaxChapter), strconv.Itoa(prof.Chapter()))
	if err != nil {
		return nil, err
	}
	n, convErr := strconv.Atoi(chapter)
	if convErr != nil || n < reel.MinChapter || n > reel.MaxChapter {
		fmt.Fprintf(out, "  ⚠ Invalid chapter %q, keeping %d\n", chapter, prof.Chapter())
		n = prof.Chapter()
	}
	prof.DefaultChapter = n

	fmt.Fprintln(out)
	return prof, nil
}

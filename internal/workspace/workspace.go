// Package workspace is the headless host the recorder and the player act on:
// the chapter and library selectors, the side content tabs, the editor and
// the REPL output of a Sourcereel page.
package workspace

import (
	"fmt"
	"log"
	"slices"

	"github.com/fakeyudi/sourcereel/internal/editor"
	"github.com/fakeyudi/sourcereel/internal/reel"
)

// State is the serializable workspace snapshot.
type State struct {
	Chapter         int                  `json:"chapter"`
	ExternalLibrary reel.ExternalLibrary `json:"external_library"`
	ActiveTab       reel.SideContentType `json:"active_tab"`
	EditorValue     string               `json:"editor_value"`
	Output          []string             `json:"output,omitempty"`
}

// DefaultState is the workspace a fresh page opens with.
func DefaultState() State {
	return State{
		Chapter:         reel.MinChapter,
		ExternalLibrary: reel.LibraryNone,
		ActiveTab:       reel.TabSourcereel,
	}
}

// Init captures the part of the state a recording starts from.
func (s State) Init() reel.Init {
	return reel.Init{
		Chapter:         s.Chapter,
		ExternalLibrary: s.ExternalLibrary,
		EditorValue:     s.EditorValue,
	}
}

// Workspace applies handler calls to a State.
type Workspace struct {
	state  State
	buffer *editor.Buffer
	runs   int

	// Logger, when set, receives one line per applied action.
	Logger *log.Logger
}

var _ reel.Handlers = (*Workspace)(nil)

// New returns a workspace starting from s.
func New(s State) *Workspace {
	s.Output = slices.Clone(s.Output)
	return &Workspace{
		state:  s,
		buffer: editor.NewBuffer(s.EditorValue),
		runs:   len(s.Output),
	}
}

// State returns a snapshot of the current state.
func (w *Workspace) State() State {
	s := w.state
	s.EditorValue = w.buffer.Value()
	s.Output = slices.Clone(w.state.Output)
	return s
}

// EditorValue returns the editor text.
func (w *Workspace) EditorValue() string { return w.buffer.Value() }

func (w *Workspace) logf(format string, args ...any) {
	if w.Logger != nil {
		w.Logger.Printf(format, args...)
	}
}

func (w *Workspace) ChapterSelect(chapter int) {
	w.state.Chapter = chapter
	w.logf("chapter -> %d", chapter)
}

func (w *Workspace) ExternalLibrarySelect(name reel.ExternalLibrary) {
	w.state.ExternalLibrary = name
	w.logf("external library -> %s", name)
}

func (w *Workspace) ActiveTabChange(tab reel.SideContentType) {
	w.state.ActiveTab = tab
	w.logf("active tab -> %s", tab)
}

// KeyboardCommand evaluates the editor program. Evaluation itself belongs to
// the interpreter; the workspace only keeps a REPL line per run.
func (w *Workspace) KeyboardCommand(cmd reel.KeyboardCommand) {
	if cmd != reel.KeyboardCommandRun {
		return
	}
	w.runs++
	line := fmt.Sprintf("[run %d] chapter %d, library %s, %d line(s)",
		w.runs, w.state.Chapter, w.state.ExternalLibrary, w.buffer.LineCount())
	w.state.Output = append(w.state.Output, line)
	w.logf("%s", line)
}

func (w *Workspace) ApplyDeltas(deltas []reel.CodeDelta) {
	w.buffer.ApplyAll(deltas)
	w.logf("applied %d delta(s)", len(deltas))
}

func (w *Workspace) Reset(init reel.Init) {
	w.state.Chapter = init.Chapter
	w.state.ExternalLibrary = init.ExternalLibrary
	w.state.ActiveTab = DefaultState().ActiveTab
	w.state.Output = nil
	w.runs = 0
	w.buffer.SetValue(init.EditorValue)
	w.logf("reset to chapter %d, library %s", init.Chapter, init.ExternalLibrary)
}

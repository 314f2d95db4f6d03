package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/sourcereel/internal/bundle"
	"github.com/fakeyudi/sourcereel/internal/clock"
	"github.com/fakeyudi/sourcereel/internal/playback"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newPlayer(t *testing.T) (Model, *workspace.Workspace, *clock.Manual) {
	t.Helper()
	cast := &bundle.Sourcecast{
		ID:    "c1",
		Title: "Streams",
		Data: reel.PlaybackData{
			Init: &reel.Init{Chapter: 1, ExternalLibrary: reel.LibraryNone, EditorValue: "1;"},
			Inputs: []reel.Input{
				reel.ChapterSelectInput(3).At(time.Second),
				reel.ActiveTabInput(reel.TabInspector).At(2 * time.Second),
				reel.KeyboardCommandInput(reel.KeyboardCommandRun).At(8 * time.Second),
			},
			Deltas: []reel.CodeDelta{
				{Time: 500 * time.Millisecond, Action: reel.DeltaInsert, Start: reel.Position{Row: 0, Column: 2}, End: reel.Position{Row: 1, Column: 0}, Lines: []string{"", ""}},
			},
		},
	}
	clk := clock.NewManual(epoch)
	ws := workspace.New(workspace.DefaultState())
	d, err := playback.New(cast.Data, ws, clk)
	if err != nil {
		t.Fatalf("playback.New: %v", err)
	}
	m := New(cast, d, ws, 50*time.Millisecond)
	if m.Init() == nil {
		t.Fatal("Init should schedule a tick")
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model), ws, clk
}

func step(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestTickAppliesDueInputs(t *testing.T) {
	m, ws, clk := newPlayer(t)

	clk.Advance(1500 * time.Millisecond)
	m = step(m, tickMsg(clk.Now()))
	if ws.State().Chapter != 3 {
		t.Errorf("chapter: got %d, want 3", ws.State().Chapter)
	}
	if m.flash == 0 {
		t.Error("expected highlight after applying an input")
	}
	if !strings.Contains(m.View(), "chapterSelect 3") {
		t.Error("title should name the applied input")
	}

	// Quiet ticks fade the highlight.
	for i := 0; i < flashTicks; i++ {
		m = step(m, tickMsg(clk.Now()))
	}
	if m.flash != 0 {
		t.Errorf("highlight still on after %d quiet ticks", flashTicks)
	}
}

func TestSpacePausesAndResumes(t *testing.T) {
	m, ws, clk := newPlayer(t)
	space := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}

	m = step(m, space)
	if m.driver.Status() != reel.PlaybackPaused {
		t.Fatalf("status after space: %v", m.driver.Status())
	}
	clk.Advance(5 * time.Second)
	m = step(m, tickMsg(clk.Now()))
	if ws.State().Chapter != 1 {
		t.Error("paused player applied inputs")
	}

	m = step(m, space)
	clk.Advance(1500 * time.Millisecond)
	m = step(m, tickMsg(clk.Now()))
	if ws.State().Chapter != 3 {
		t.Errorf("resumed player did not apply input, chapter %d", ws.State().Chapter)
	}
}

func TestSeekKeys(t *testing.T) {
	m, ws, _ := newPlayer(t)

	m = step(m, tea.KeyMsg{Type: tea.KeyRight})
	if got := ws.State().ActiveTab; got != reel.TabInspector {
		t.Errorf("after seeking +5s active tab is %q", got)
	}
	if m.driver.Applied() != 2 {
		t.Errorf("applied %d inputs, want 2", m.driver.Applied())
	}

	m = step(m, tea.KeyMsg{Type: tea.KeyLeft})
	if ws.State().Chapter != 1 || m.driver.Applied() != 0 {
		t.Errorf("seeking back to 0 left chapter %d, applied %d", ws.State().Chapter, m.driver.Applied())
	}
	if ws.EditorValue() != "1;" {
		t.Errorf("editor at 0: %q", ws.EditorValue())
	}
	if got := ws.State().ActiveTab; got != reel.TabSourcereel {
		t.Errorf("seeking back to 0 kept active tab %q", got)
	}

	m = step(m, tea.KeyMsg{Type: tea.KeyRight})
	m = step(m, tea.KeyMsg{Type: tea.KeyRight})
	if len(ws.State().Output) != 1 {
		t.Errorf("run at 8s not applied after seeking to 10s: %v", ws.State().Output)
	}

	m = step(m, tea.KeyMsg{Type: tea.KeyHome})
	if m.driver.Applied() != 0 || len(ws.State().Output) != 0 {
		t.Error("home did not restart playback")
	}
}

func TestPaneSwitchingAndView(t *testing.T) {
	m, _, _ := newPlayer(t)
	m = step(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	if m.activePane != paneInputs {
		t.Fatalf("active pane: %v", m.activePane)
	}
	view := m.View()
	for _, want := range []string{"Streams", "Inputs (0 of 3 applied)", "keyboardCommand run", "0:00.000 / 0:08.000"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	m = step(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.activePane != paneEditor {
		t.Errorf("tab should wrap to editor, got %v", m.activePane)
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newPlayer(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.driver.Status() != reel.NotPlaying {
		t.Error("driver still playing after quit")
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(5*time.Second, 10*time.Second, 10); got != "█████░░░░░" {
		t.Errorf("half: %q", got)
	}
	if got := progressBar(0, 0, 4); got != "████" {
		t.Errorf("empty cast: %q", got)
	}
}

func TestSpaceAfterFinishResumesFromSeek(t *testing.T) {
	m, ws, clk := newPlayer(t)

	clk.Advance(20 * time.Second)
	m = step(m, tickMsg(clk.Now()))
	if m.driver.Status() != reel.NotPlaying {
		t.Fatalf("status after the last input: %v", m.driver.Status())
	}

	m = step(m, tea.KeyMsg{Type: tea.KeyLeft})
	m = step(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	if m.driver.Status() != reel.Playing {
		t.Fatalf("space after seeking back: status %v", m.driver.Status())
	}
	if m.driver.Applied() != 2 || ws.State().Chapter != 3 {
		t.Errorf("space restarted playback: applied %d, chapter %d", m.driver.Applied(), ws.State().Chapter)
	}
	if got := m.driver.Position(); got != 3*time.Second {
		t.Errorf("position: got %v, want 3s", got)
	}
}

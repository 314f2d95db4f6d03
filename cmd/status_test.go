package cmd

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

// Feature: sourcereel, Property 10: Status counts accuracy
func TestStatusCountsAccuracy(t *testing.T) {
	isolate(t)

	rapid.Check(t, func(rt *rapid.T) {
		N := rapid.IntRange(0, 20).Draw(rt, "N") // number of inputs
		M := rapid.IntRange(0, 20).Draw(rt, "M") // number of deltas

		tmp := t.TempDir()
		t.Setenv("XDG_DATA_HOME", tmp)

		store, err := session.NewSessionStore()
		if err != nil {
			rt.Fatalf("NewSessionStore: %v", err)
		}

		inputs := make([]reel.Input, N)
		for i := range inputs {
			inputs[i] = reel.KeyboardCommandInput(reel.KeyboardCommandRun).At(time.Duration(i) * time.Second)
		}
		deltas := make([]reel.CodeDelta, M)
		for i := range deltas {
			deltas[i] = reel.CodeDelta{Time: time.Duration(i) * time.Second, Action: reel.DeltaInsert, Lines: []string{"x"}}
		}

		init := workspace.DefaultState().Init()
		s := &session.Session{
			ID:        "test-id",
			CreatedAt: epoch,
			Status:    reel.RecordingPaused,
			Timer:     reel.Timer{ElapsedBeforePause: time.Duration(N) * time.Second},
			Init:      &init,
			Inputs:    inputs,
			Deltas:    deltas,
			Workspace: workspace.DefaultState(),
		}
		if err := store.Save(s); err != nil {
			rt.Fatalf("Save: %v", err)
		}

		out, err := executeCommand(rootCmd, "status")
		if err != nil {
			rt.Fatalf("status command error: %v", err)
		}

		for _, want := range []string{
			"Status: paused",
			fmt.Sprintf("Inputs: %d", N),
			fmt.Sprintf("Deltas: %d", M),
			fmt.Sprintf("Duration: 0:%02d.000", N),
		} {
			if !strings.Contains(out, want) {
				rt.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})
}

func TestStatusNoSession(t *testing.T) {
	isolate(t)
	if out := mustRun(t, "status"); !strings.Contains(out, "no active session") {
		t.Errorf("status output: %q", out)
	}
}

func TestInputWithoutRecordingIsNotRecorded(t *testing.T) {
	isolate(t)

	out := mustRun(t, "input", "chapter", "4")
	if !strings.Contains(out, "not recorded") {
		t.Errorf("input output: %q", out)
	}
	s := loadSession(t)
	if s.Workspace.Chapter != 4 || len(s.Inputs) != 0 {
		t.Errorf("session: chapter %d, %d inputs", s.Workspace.Chapter, len(s.Inputs))
	}

	if _, err := executeCommand(rootCmd, "input", "chapter", "0"); err == nil {
		t.Error("expected error for chapter 0")
	}
	if _, err := executeCommand(rootCmd, "input", "tab", "console"); err == nil {
		t.Error("expected error for unknown tab")
	}
}

package session_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

// generateTime produces an arbitrary time.Time value at millisecond precision.
func generateTime(t *rapid.T, label string) time.Time {
	ms := rapid.Int64Range(0, 1_700_000_000_000).Draw(t, label)
	return time.UnixMilli(ms).UTC()
}

// generateSession produces an arbitrary Session value with ordered logs.
func generateSession(t *rapid.T) *session.Session {
	s := &session.Session{
		ID:        rapid.StringN(1, 36, -1).Draw(t, "id"),
		CreatedAt: generateTime(t, "created_at"),
		Status:    reel.RecordingStatus(rapid.IntRange(0, 2).Draw(t, "status")),
		Timer: reel.Timer{
			ElapsedBeforePause: time.Duration(rapid.Int64Range(0, 1e12).Draw(t, "elapsed")),
			Running:            rapid.Bool().Draw(t, "running"),
		},
		Inputs:    []reel.Input{},
		Deltas:    []reel.CodeDelta{},
		Workspace: workspace.DefaultState(),
	}
	if s.Timer.Running {
		s.Timer.ResumedAt = generateTime(t, "resumed_at")
	}
	if rapid.Bool().Draw(t, "has_init") {
		s.Init = &reel.Init{
			Chapter:         rapid.IntRange(reel.MinChapter, reel.MaxChapter).Draw(t, "init_chapter"),
			ExternalLibrary: rapid.SampledFrom(reel.ExternalLibraries).Draw(t, "init_library"),
			EditorValue:     rapid.String().Draw(t, "init_editor"),
		}
	}

	var at time.Duration
	for i := rapid.IntRange(0, 5).Draw(t, "num_inputs"); i > 0; i-- {
		at += time.Duration(rapid.Int64Range(0, 5000).Draw(t, "gap")) * time.Millisecond
		s.Inputs = append(s.Inputs, reel.ChapterSelectInput(rapid.IntRange(1, 4).Draw(t, "chapter")).At(at))
	}
	for i := rapid.IntRange(0, 5).Draw(t, "num_deltas"); i > 0; i-- {
		at += time.Duration(rapid.Int64Range(0, 5000).Draw(t, "gap")) * time.Millisecond
		s.Deltas = append(s.Deltas, reel.CodeDelta{
			Time:   at,
			Action: reel.DeltaInsert,
			Lines:  []string{rapid.String().Draw(t, "line")},
		})
	}
	s.Workspace.EditorValue = rapid.String().Draw(t, "editor")
	return s
}

// Feature: sourcereel, Property 3: Recording session persistence round-trip
func TestSessionPersistenceRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	store, err := session.NewSessionStore()
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}

	rapid.Check(t, func(t *rapid.T) {
		original := generateSession(t)

		if err := store.Save(original); err != nil {
			t.Fatalf("Save: %v", err)
		}
		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		if loaded.ID != original.ID || loaded.Status != original.Status {
			t.Errorf("header mismatch: got %s/%v, want %s/%v", loaded.ID, loaded.Status, original.ID, original.Status)
		}
		if !loaded.CreatedAt.Equal(original.CreatedAt) {
			t.Errorf("CreatedAt mismatch: got %v, want %v", loaded.CreatedAt, original.CreatedAt)
		}
		if loaded.Timer.ElapsedBeforePause != original.Timer.ElapsedBeforePause ||
			loaded.Timer.Running != original.Timer.Running ||
			!loaded.Timer.ResumedAt.Equal(original.Timer.ResumedAt) {
			t.Errorf("Timer mismatch: got %+v, want %+v", loaded.Timer, original.Timer)
		}
		if (loaded.Init == nil) != (original.Init == nil) {
			t.Fatalf("Init nil mismatch: got %v, want %v", loaded.Init, original.Init)
		} else if loaded.Init != nil && *loaded.Init != *original.Init {
			t.Errorf("Init mismatch: got %+v, want %+v", *loaded.Init, *original.Init)
		}

		if len(loaded.Inputs) != len(original.Inputs) {
			t.Fatalf("Inputs length mismatch: got %d, want %d", len(loaded.Inputs), len(original.Inputs))
		}
		for i, in := range original.Inputs {
			got := loaded.Inputs[i]
			if got.Time != in.Time || got.Type != in.Type || string(got.Data) != string(in.Data) {
				t.Errorf("Inputs[%d] mismatch: got %+v, want %+v", i, got, in)
			}
		}
		if len(loaded.Deltas) != len(original.Deltas) {
			t.Fatalf("Deltas length mismatch: got %d, want %d", len(loaded.Deltas), len(original.Deltas))
		}
		for i, d := range original.Deltas {
			got := loaded.Deltas[i]
			if got.Time != d.Time || got.Lines[0] != d.Lines[0] {
				t.Errorf("Deltas[%d] mismatch: got %+v, want %+v", i, got, d)
			}
		}
		if loaded.Workspace.EditorValue != original.Workspace.EditorValue {
			t.Errorf("EditorValue mismatch: got %q, want %q", loaded.Workspace.EditorValue, original.Workspace.EditorValue)
		}
	})
}

// TestLoadReturnsErrNoSession verifies that Load returns ErrNoSession when no
// session file exists on disk.
func TestLoadReturnsErrNoSession(t *testing.T) {
	store, err := session.NewSessionStoreAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStoreAt: %v", err)
	}

	_, err = store.Load()
	if !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got: %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, err := session.NewSessionStoreAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStoreAt: %v", err)
	}
	if err := store.Save(&session.Session{ID: "x"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession after Delete, got %v", err)
	}
}

// TestSaveFailurePropagatesError verifies that creating a store under an
// unwritable directory fails.
func TestSaveFailurePropagatesError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root; permission checks are ineffective")
	}

	tmp := t.TempDir()
	if err := os.Chmod(tmp, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(tmp, 0o755) })

	t.Setenv("XDG_DATA_HOME", tmp)

	_, err := session.NewSessionStore()
	if err == nil {
		t.Fatal("expected error creating store in unwritable directory, got nil")
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	store, err := session.NewSessionStoreAt(dir)
	if err != nil {
		t.Fatalf("NewSessionStoreAt: %v", err)
	}
	raw := `{"version":99,"session":{"id":"x"}}`
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); !errors.Is(err, session.ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestLoadFillsEmptyLogs(t *testing.T) {
	store, err := session.NewSessionStoreAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStoreAt: %v", err)
	}
	if err := store.Save(&session.Session{ID: "x"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Inputs == nil || s.Deltas == nil {
		t.Errorf("logs not initialised: %+v", s)
	}
}

func TestUpdateCreatesAndAborts(t *testing.T) {
	store, err := session.NewSessionStoreAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStoreAt: %v", err)
	}

	err = store.Update(func(cur *session.Session) (*session.Session, error) {
		if cur != nil {
			t.Errorf("expected no session, got %+v", cur)
		}
		return &session.Session{ID: "new"}, nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	boom := errors.New("boom")
	err = store.Update(func(cur *session.Session) (*session.Session, error) {
		cur.ID = "changed"
		return cur, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	s, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ID != "new" {
		t.Errorf("aborted update was saved: id %q", s.ID)
	}
}

// Two stores on the same directory stand in for a watcher and a one-shot
// command in separate processes.
func TestConcurrentUpdatesKeepEveryInput(t *testing.T) {
	dir := t.TempDir()
	watcher, err := session.NewSessionStoreAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	command, err := session.NewSessionStoreAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := watcher.Save(&session.Session{ID: "s", Status: reel.Recording}); err != nil {
		t.Fatal(err)
	}

	const perWriter = 25
	appendRun := func(store session.SessionStore, errs chan<- error) {
		for i := 0; i < perWriter; i++ {
			errs <- store.Update(func(cur *session.Session) (*session.Session, error) {
				cur.Inputs = append(cur.Inputs, reel.KeyboardCommandInput(reel.KeyboardCommandRun))
				return cur, nil
			})
		}
	}
	errs := make(chan error, 2*perWriter)
	go appendRun(watcher, errs)
	go appendRun(command, errs)
	for i := 0; i < 2*perWriter; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	s, err := watcher.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Inputs) != 2*perWriter {
		t.Errorf("lost updates: %d inputs, want %d", len(s.Inputs), 2*perWriter)
	}
}

// A stale writer re-reads under the lock, so a stopped recording is not
// brought back.
func TestUpdateSeesFinalizedSession(t *testing.T) {
	store, err := session.NewSessionStoreAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(&session.Session{ID: "s", Status: reel.Recording}); err != nil {
		t.Fatal(err)
	}
	stale, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Update(func(cur *session.Session) (*session.Session, error) {
		cur.Status = reel.NotRecording
		return cur, nil
	}); err != nil {
		t.Fatal(err)
	}

	if err := store.Update(func(cur *session.Session) (*session.Session, error) {
		if cur.Status != reel.NotRecording {
			t.Errorf("update saw status %v", cur.Status)
		}
		return cur, nil
	}); err != nil {
		t.Fatal(err)
	}
	if stale.Status != reel.Recording {
		t.Fatal("test setup: stale copy changed")
	}
	if s, _ := store.Load(); s.Status != reel.NotRecording {
		t.Errorf("recording resurrected: %v", s.Status)
	}
}

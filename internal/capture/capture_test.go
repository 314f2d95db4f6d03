package capture

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fakeyudi/sourcereel/internal/clock"
	"github.com/fakeyudi/sourcereel/internal/editor"
	"github.com/fakeyudi/sourcereel/internal/recorder"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) session.SessionStore {
	t.Helper()
	store, err := session.NewSessionStoreAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// startRecording saves a session recording from editor value initial.
func startRecording(t *testing.T, store session.SessionStore, clk clock.Clock, initial string) {
	t.Helper()
	state := workspace.DefaultState()
	state.EditorValue = initial
	sess := &session.Session{ID: "s", CreatedAt: epoch, Workspace: state}
	if err := recorder.New(sess, clk).Start(state.Init()); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSyncFileRecordsDeltas(t *testing.T) {
	store := newStore(t)
	clk := clock.NewManual(epoch)
	startRecording(t, store, clk, "const x = 1;\n")

	path := filepath.Join(t.TempDir(), "program.js")
	writeFile(t, path, "const x = 2;\ndisplay(x);\n")
	clk.Advance(1500 * time.Millisecond)

	res, err := SyncFile(path, store, clk)
	if err != nil {
		t.Fatalf("SyncFile: %v", err)
	}
	if res.Deltas == 0 || !res.Recorded {
		t.Fatalf("result: %+v", res)
	}

	sess, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if sess.Workspace.EditorValue != "const x = 2;\ndisplay(x);\n" {
		t.Errorf("workspace editor: %q", sess.Workspace.EditorValue)
	}
	if len(sess.Deltas) != res.Deltas {
		t.Fatalf("recorded %d deltas, want %d", len(sess.Deltas), res.Deltas)
	}
	for _, d := range sess.Deltas {
		if d.Time != 1500*time.Millisecond {
			t.Errorf("delta stamped %v, want 1.5s", d.Time)
		}
	}

	// Replaying the recorded deltas over the initial value reproduces the file.
	buf := editor.NewBuffer(sess.Init.EditorValue)
	buf.ApplyAll(sess.Deltas)
	if buf.Value() != sess.Workspace.EditorValue {
		t.Errorf("replayed %q, want %q", buf.Value(), sess.Workspace.EditorValue)
	}
}

func TestSyncFileUnchangedIsNoop(t *testing.T) {
	store := newStore(t)
	clk := clock.NewManual(epoch)
	startRecording(t, store, clk, "same")

	path := filepath.Join(t.TempDir(), "program.js")
	writeFile(t, path, "same")

	res, err := SyncFile(path, store, clk)
	if err != nil {
		t.Fatalf("SyncFile: %v", err)
	}
	if res.Deltas != 0 {
		t.Errorf("expected no deltas, got %+v", res)
	}
}

func TestSyncFilePausedUpdatesWithoutRecording(t *testing.T) {
	store := newStore(t)
	clk := clock.NewManual(epoch)
	startRecording(t, store, clk, "")

	sess, _ := store.Load()
	if err := recorder.New(sess, clk).Pause(); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(sess); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "program.js")
	writeFile(t, path, "1;")
	res, err := SyncFile(path, store, clk)
	if err != nil {
		t.Fatalf("SyncFile: %v", err)
	}
	if res.Recorded {
		t.Error("paused session recorded deltas")
	}

	sess, _ = store.Load()
	if sess.Workspace.EditorValue != "1;" || len(sess.Deltas) != 0 {
		t.Errorf("session: editor %q, %d deltas", sess.Workspace.EditorValue, len(sess.Deltas))
	}
	if sess.Status != reel.RecordingPaused {
		t.Errorf("status changed to %v", sess.Status)
	}
}

func TestSyncFileNoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.js")
	writeFile(t, path, "x")
	_, err := SyncFile(path, newStore(t), clock.NewManual(epoch))
	if !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestSyncFileAfterStopKeepsSessionStopped(t *testing.T) {
	store := newStore(t)
	clk := clock.NewManual(epoch)
	startRecording(t, store, clk, "1;")

	err := store.Update(func(sess *session.Session) (*session.Session, error) {
		_, err := recorder.New(sess, clk).Finalize()
		return sess, err
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	path := filepath.Join(t.TempDir(), "program.js")
	writeFile(t, path, "1;\n2;")
	res, err := SyncFile(path, store, clk)
	if err != nil {
		t.Fatalf("SyncFile: %v", err)
	}
	if res.Recorded {
		t.Error("deltas recorded into a stopped session")
	}
	sess, _ := store.Load()
	if sess.Status != reel.NotRecording || len(sess.Deltas) != 0 {
		t.Errorf("session: status %v, %d deltas", sess.Status, len(sess.Deltas))
	}
}

func TestSyncFileInterleavedWithInputsKeepsBoth(t *testing.T) {
	store := newStore(t)
	clk := clock.NewManual(epoch)
	startRecording(t, store, clk, "")
	path := filepath.Join(t.TempDir(), "program.js")

	const runs = 20
	done := make(chan error)
	go func() {
		for i := 0; i < runs; i++ {
			err := store.Update(func(sess *session.Session) (*session.Session, error) {
				recorder.Wrap(workspace.New(sess.Workspace), recorder.New(sess, clk)).
					KeyboardCommand(reel.KeyboardCommandRun)
				return sess, nil
			})
			if err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	body := ""
	for i := 0; i < runs; i++ {
		body += "x;\n"
		writeFile(t, path, body)
		if _, err := SyncFile(path, store, clk); err != nil {
			t.Fatalf("SyncFile: %v", err)
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("Update: %v", err)
	}

	sess, _ := store.Load()
	if len(sess.Inputs) != runs {
		t.Errorf("lost inputs: got %d, want %d", len(sess.Inputs), runs)
	}
	if sess.Workspace.EditorValue != body {
		t.Errorf("lost edits: editor %q", sess.Workspace.EditorValue)
	}
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestWatchSyncsOnWrite(t *testing.T) {
	store := newStore(t)
	clk := clock.NewManual(epoch)
	startRecording(t, store, clk, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "program.js")
	writeFile(t, path, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	out := &syncBuffer{}
	go func() { done <- Watch(ctx, path, store, clk, log.New(out, "", 0)) }()

	// Other files in the directory are ignored.
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	deadline := time.Now().Add(5 * time.Second)
	for {
		writeFile(t, path, "display(42);")
		sess, err := store.Load()
		if err == nil && sess.Workspace.EditorValue == "display(42);" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("watcher never synced the write")
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

// Package capture turns edits of an on-disk program file into editor deltas
// on the persisted session, recording them when a recording is running.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/fakeyudi/sourcereel/internal/clock"
	"github.com/fakeyudi/sourcereel/internal/editor"
	"github.com/fakeyudi/sourcereel/internal/recorder"
	"github.com/fakeyudi/sourcereel/internal/reel"
	"github.com/fakeyudi/sourcereel/internal/session"
	"github.com/fakeyudi/sourcereel/internal/workspace"
)

// Result describes one sync.
type Result struct {
	// Deltas is the number of deltas applied to the workspace editor.
	Deltas int
	// Recorded reports whether the deltas were added to the recording.
	Recorded bool
}

// SyncFile reads path, diffs it against the session's editor value and
// applies the difference through the recording handlers. The session is
// changed under the store's lock. ErrNoSession is returned when no session
// exists.
func SyncFile(path string, store session.SessionStore, c clock.Clock) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}

	var res Result
	err = store.Update(func(sess *session.Session) (*session.Session, error) {
		if sess == nil {
			return nil, session.ErrNoSession
		}
		ws := workspace.New(sess.Workspace)
		deltas := editor.Diff(ws.EditorValue(), string(data))
		if len(deltas) == 0 {
			return nil, nil
		}

		rec := recorder.New(sess, c)
		res = Result{Deltas: len(deltas), Recorded: rec.Status() == reel.Recording}
		recorder.Wrap(ws, rec).ApplyDeltas(deltas)
		sess.Workspace = ws.State()
		return sess, nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Watch syncs path once, then again on every write until ctx is cancelled.
// The parent directory is watched so editors that save by renaming a temp
// file over path are still seen. Sync failures are logged and do not stop
// the watcher.
func Watch(ctx context.Context, path string, store session.SessionStore, c clock.Clock, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	resync := func() {
		res, err := SyncFile(target, store, c)
		switch {
		case errors.Is(err, session.ErrNoSession):
			logger.Printf("no session, ignoring change to %s", filepath.Base(target))
		case errors.Is(err, os.ErrNotExist):
			// Removed between the event and the read; the next write resyncs.
		case err != nil:
			logger.Printf("sync %s: %v", filepath.Base(target), err)
		case res.Deltas > 0:
			logger.Printf("%s: %d delta(s), recorded=%t", filepath.Base(target), res.Deltas, res.Recorded)
		}
	}
	resync()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				resync()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Printf("watcher: %v", err)
		}
	}
}

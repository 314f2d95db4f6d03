package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/fakeyudi/sourcereel/internal/reel"
)

// fileVersion is the layout of session.json written by this build.
const fileVersion = 1

var (
	// ErrNoSession is returned by Load when no recording session exists on disk.
	ErrNoSession = errors.New("no active session")
	// ErrUnsupportedVersion is returned by Load for a session file written by
	// a newer build.
	ErrUnsupportedVersion = errors.New("unsupported session file version")
)

// SessionStore keeps the one recording session of this user between CLI
// invocations. Save, Update and Delete hold an advisory lock on the session
// file, so a long-running watcher and one-shot commands never overwrite each
// other's changes.
type SessionStore interface {
	Save(s *Session) error
	Load() (*Session, error) // returns ErrNoSession if none exists
	// Update loads the session, passes it to fn and saves the session fn
	// returns, all under the lock. cur is nil when no session exists; a nil
	// result saves nothing. An error from fn aborts without saving.
	Update(fn func(cur *Session) (*Session, error)) error
	Delete() error
}

// sessionFile is the on-disk envelope around a Session.
type sessionFile struct {
	Version int      `json:"version"`
	Session *Session `json:"session"`
}

type diskStore struct {
	path string
}

// NewSessionStore returns a SessionStore in the sourcereel data directory,
// $XDG_DATA_HOME/sourcereel or ~/.local/share/sourcereel.
func NewSessionStore() (SessionStore, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}
	return NewSessionStoreAt(dir)
}

// NewSessionStoreAt returns a SessionStore keeping session.json in dir.
func NewSessionStoreAt(dir string) (SessionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &diskStore{path: filepath.Join(dir, "session.json")}, nil
}

// DataDir returns the sourcereel data directory. The library database lives
// beside the session file.
func DataDir() (string, error) {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, "sourcereel"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "sourcereel"), nil
}

// lock blocks until this process holds the session lock.
func (d *diskStore) lock() (*flock.Flock, error) {
	l := flock.New(d.path + ".lock")
	if err := l.Lock(); err != nil {
		return nil, fmt.Errorf("lock recording session: %w", err)
	}
	return l, nil
}

func (d *diskStore) Save(s *Session) error {
	l, err := d.lock()
	if err != nil {
		return err
	}
	defer l.Unlock()
	return d.save(s)
}

func (d *diskStore) Update(fn func(cur *Session) (*Session, error)) error {
	l, err := d.lock()
	if err != nil {
		return err
	}
	defer l.Unlock()

	cur, err := d.Load()
	if errors.Is(err, ErrNoSession) {
		cur = nil
	} else if err != nil {
		return err
	}
	next, err := fn(cur)
	if err != nil || next == nil {
		return err
	}
	return d.save(next)
}

func (d *diskStore) save(s *Session) error {
	if s == nil {
		return errors.New("persist recording session: nil session")
	}
	data, err := json.Marshal(sessionFile{Version: fileVersion, Session: s})
	if err != nil {
		return fmt.Errorf("persist recording session: %w", err)
	}
	if err := writeAtomic(d.path, data); err != nil {
		return fmt.Errorf("persist recording session: %w", err)
	}
	return nil
}

func (d *diskStore) Load() (*Session, error) {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("read recording session: %w", err)
	}

	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse recording session: %w", err)
	}
	if f.Version > fileVersion {
		return nil, fmt.Errorf("%w %d", ErrUnsupportedVersion, f.Version)
	}
	if f.Session == nil {
		return nil, fmt.Errorf("parse recording session: missing session")
	}

	s := f.Session
	if s.Inputs == nil {
		s.Inputs = []reel.Input{}
	}
	if s.Deltas == nil {
		s.Deltas = []reel.CodeDelta{}
	}
	return s, nil
}

// Delete removes the session file. Deleting a missing session is not an error.
func (d *diskStore) Delete() error {
	l, err := d.lock()
	if err != nil {
		return err
	}
	defer l.Unlock()

	err = os.Remove(d.path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("delete recording session: %w", err)
}

// writeAtomic replaces path with data through a temp file in the same
// directory, so readers never see a half-written session.
func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Package library indexes finished sourcecasts in a local SQLite database so
// they can be listed, replayed and deleted by ID.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fakeyudi/sourcereel/internal/bundle"
	"github.com/fakeyudi/sourcereel/internal/library/migrations"
)

// ErrNotFound is returned when no sourcecast has the requested ID.
var ErrNotFound = errors.New("sourcecast not found")

// Entry is the index row for one sourcecast, without its payloads.
type Entry struct {
	ID          string
	Title       string
	Description string
	Author      string
	CreatedAt   time.Time
	Duration    time.Duration
	AudioName   string
}

// Store persists sourcecasts in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// DefaultPath returns the library location under the data directory.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "library.db")
}

// Open opens the library at path, creating it if needed, and applies the
// embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("library path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts sc, replacing any sourcecast with the same ID.
func (s *Store) Save(ctx context.Context, sc *bundle.Sourcecast) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("library is not configured")
	}
	if sc == nil {
		return fmt.Errorf("sourcecast is required")
	}
	id := strings.TrimSpace(sc.ID)
	if id == "" {
		return fmt.Errorf("sourcecast id is required")
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("save sourcecast %s: %w", id, err)
	}
	data, err := json.Marshal(sc.Data)
	if err != nil {
		return fmt.Errorf("marshal playback data: %w", err)
	}
	createdAt := sc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sourcecasts (
		   id, title, description, author, duration_ns,
		   audio_name, audio, playback_data, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   author = excluded.author,
		   duration_ns = excluded.duration_ns,
		   audio_name = excluded.audio_name,
		   audio = excluded.audio,
		   playback_data = excluded.playback_data,
		   created_at = excluded.created_at`,
		id,
		sc.Title,
		sc.Description,
		sc.Author,
		int64(sc.Duration),
		sc.AudioName,
		sc.Audio,
		string(data),
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("save sourcecast %s: %w", id, err)
	}
	return nil
}

// Get returns the full sourcecast with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*bundle.Sourcecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("library is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("sourcecast id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, title, description, author, duration_ns,
		        audio_name, audio, playback_data, created_at
		   FROM sourcecasts
		  WHERE id = ?`,
		id,
	)

	var (
		sc        bundle.Sourcecast
		duration  int64
		data      string
		createdAt int64
	)
	err := row.Scan(
		&sc.ID,
		&sc.Title,
		&sc.Description,
		&sc.Author,
		&duration,
		&sc.AudioName,
		&sc.Audio,
		&data,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sourcecast %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(data), &sc.Data); err != nil {
		return nil, fmt.Errorf("decode playback data for %s: %w", id, err)
	}
	if len(sc.Audio) == 0 {
		sc.Audio = nil
	}
	sc.Duration = time.Duration(duration)
	sc.CreatedAt = fromMillis(createdAt)
	return &sc, nil
}

// List returns every sourcecast, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("library is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, title, description, author, duration_ns, audio_name, created_at
		   FROM sourcecasts
		  ORDER BY created_at DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sourcecasts: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			duration  int64
			createdAt int64
		)
		if err := rows.Scan(
			&e.ID,
			&e.Title,
			&e.Description,
			&e.Author,
			&duration,
			&e.AudioName,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan sourcecast: %w", err)
		}
		e.Duration = time.Duration(duration)
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sourcecasts: %w", err)
	}
	return entries, nil
}

// Delete removes the sourcecast with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("library is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sourcecast id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sourcecasts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sourcecast %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sourcecast %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

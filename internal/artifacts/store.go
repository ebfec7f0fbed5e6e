package artifacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"research-portal/internal/common"
)

// Artifact is one rendered workbook on disk. The registry is the source of
// truth for which filenames the download endpoint may serve. A request for
// a name that was never recorded is a 404, not a filesystem probe.
type Artifact struct {
	Filename   string
	Task       string
	SourceName string
	Metadata   string // JSON metadata summary as returned to the caller
	CreatedAt  time.Time
}

// Store indexes rendered artifacts in an embedded SQLite database next to
// the output directory.
type Store struct {
	db     *sql.DB
	dir    string
	logger *slog.Logger
}

// Open opens (creating if needed) the artifact index at indexPath for
// workbooks stored under dir.
func Open(indexPath, dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	db, err := sql.Open("sqlite", indexPath)
	if err != nil {
		return nil, fmt.Errorf("open artifact index: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	filename    TEXT PRIMARY KEY,
	task        TEXT NOT NULL,
	source_name TEXT NOT NULL,
	metadata    TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate artifact index: %w", err)
	}

	return &Store{db: db, dir: dir, logger: logger}, nil
}

// Dir returns the directory artifacts are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Record registers a rendered artifact under its generated filename.
func (s *Store) Record(ctx context.Context, a Artifact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (filename, task, source_name, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.Filename, a.Task, a.SourceName, a.Metadata, a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	s.logger.Info("artifacts.record.ok", "filename", a.Filename, "task", a.Task)
	return nil
}

// Resolve maps a caller-supplied filename to an absolute path, refusing
// anything not present in the index or not a plain basename.
func (s *Store) Resolve(ctx context.Context, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: invalid artifact name", common.ErrNotFound)
	}

	var stored string
	err := s.db.QueryRowContext(ctx,
		`SELECT filename FROM artifacts WHERE filename = ?`, filename,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: artifact %q", common.ErrNotFound, filename)
	}
	if err != nil {
		return "", fmt.Errorf("lookup artifact: %w", err)
	}

	path := filepath.Join(s.dir, stored)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: artifact file missing", common.ErrNotFound)
	}
	return path, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

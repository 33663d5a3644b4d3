package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	tool        TEXT NOT NULL,
	argv        TEXT NOT NULL,
	cwd         TEXT NOT NULL DEFAULT '',
	exit_code   INTEGER,
	timed_out   INTEGER NOT NULL DEFAULT 0,
	truncated   INTEGER NOT NULL DEFAULT 0,
	stdout      TEXT NOT NULL DEFAULT '',
	stderr      TEXT NOT NULL DEFAULT '',
	started_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// SQLiteStore persists runs in a SQLite database. The database is
// opened lazily on first use; when path is empty a file under a fresh
// temp directory is used, so history lasts for the server's lifetime.
type SQLiteStore struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

// NewSQLiteStore creates a store backed by the database file at path.
// An empty path selects a per-process temp file.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Save inserts a run record.
func (s *SQLiteStore) Save(run *Run) error {
	db, err := s.ensureDB()
	if err != nil {
		return err
	}
	argv, err := json.Marshal(run.Argv)
	if err != nil {
		return fmt.Errorf("marshalling argv for run %s: %w", run.ID, err)
	}

	var exitCode sql.NullInt64
	if run.ExitCode != nil {
		exitCode = sql.NullInt64{Int64: int64(*run.ExitCode), Valid: true}
	}

	_, err = db.Exec(`INSERT OR REPLACE INTO runs
		(id, tool, argv, cwd, exit_code, timed_out, truncated, stdout, stderr, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Tool, string(argv), run.Cwd, exitCode,
		boolInt(run.TimedOut), boolInt(run.Truncated),
		run.Stdout, run.Stderr,
		run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// Load reads a run record by ID.
func (s *SQLiteStore) Load(runID string) (*Run, error) {
	db, err := s.ensureDB()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(`SELECT id, tool, argv, cwd, exit_code, timed_out, truncated,
		stdout, stderr, started_at, duration_ms FROM runs WHERE id = ?`, runID)

	var (
		run        Run
		argv       string
		exitCode   sql.NullInt64
		timedOut   int
		truncated  int
		startedAt  int64
		durationMS int64
	)
	err = row.Scan(&run.ID, &run.Tool, &argv, &run.Cwd, &exitCode, &timedOut,
		&truncated, &run.Stdout, &run.Stderr, &startedAt, &durationMS)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", runID, err)
	}

	if err := json.Unmarshal([]byte(argv), &run.Argv); err != nil {
		return nil, fmt.Errorf("unmarshalling argv for run %s: %w", runID, err)
	}
	if exitCode.Valid {
		code := int(exitCode.Int64)
		run.ExitCode = &code
	}
	run.TimedOut = timedOut != 0
	run.Truncated = truncated != 0
	run.StartedAt = time.UnixMilli(startedAt)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

// Recent returns up to n run summaries, newest first.
func (s *SQLiteStore) Recent(n int) ([]Summary, error) {
	db, err := s.ensureDB()
	if err != nil {
		return nil, err
	}
	if n < 1 {
		n = 1
	}

	rows, err := db.Query(`SELECT id, tool, exit_code, timed_out, started_at, duration_ms
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum        Summary
			exitCode   sql.NullInt64
			timedOut   int
			startedAt  int64
			durationMS int64
		)
		if err := rows.Scan(&sum.ID, &sum.Tool, &exitCode, &timedOut, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning run summary: %w", err)
		}
		if exitCode.Valid {
			code := int(exitCode.Int64)
			sum.ExitCode = &code
		}
		sum.TimedOut = timedOut != 0
		sum.StartedAt = time.UnixMilli(startedAt)
		sum.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Close closes the database if it was opened.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) ensureDB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	path := s.path
	if path == "" {
		dir, err := os.MkdirTemp("", "qlshim-runs-*")
		if err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
		path = filepath.Join(dir, "runs.db")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying history schema: %w", err)
	}

	s.db = db
	s.path = path
	return db, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

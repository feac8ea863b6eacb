package collector

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no report exists for the requested id.
var ErrNotFound = errors.New("report not found")

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id        TEXT PRIMARY KEY,
	filename  TEXT NOT NULL,
	program   TEXT NOT NULL DEFAULT '',
	signal    TEXT NOT NULL DEFAULT '',
	hostname  TEXT NOT NULL DEFAULT '',
	received  TIMESTAMP NOT NULL,
	size      INTEGER NOT NULL,
	sha256    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_received ON reports(received DESC);
`

// Meta carries the optional form fields a submitter attaches to an upload.
type Meta struct {
	Program  string
	Signal   string
	Hostname string
}

// Report describes one stored crash report.
type Report struct {
	ID       string    `json:"id"`
	Filename string    `json:"filename"`
	Program  string    `json:"program,omitempty"`
	Signal   string    `json:"signal,omitempty"`
	Hostname string    `json:"hostname,omitempty"`
	Received time.Time `json:"received"`
	Size     int64     `json:"size"`
	SHA256   string    `json:"sha256"`
}

// Store persists uploaded reports: bytes in a spool directory, metadata in
// a SQLite index.
type Store struct {
	dir string
	db  *sql.DB
}

// NewStore opens (creating if needed) a report store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating spool directory: %w", err)
	}

	dbPath := filepath.Join(dir, "index.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("creating schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{dir: dir, db: db}, nil
}

// Close closes the index database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Add spools the report bytes from r and records a row for them. The
// returned Report carries the generated id.
func (s *Store) Add(ctx context.Context, r io.Reader, filename string, meta Meta) (Report, error) {
	rep := Report{
		ID:       uuid.New().String(),
		Filename: filepath.Base(filename),
		Program:  meta.Program,
		Signal:   meta.Signal,
		Hostname: meta.Hostname,
		Received: time.Now().UTC(),
	}
	if rep.Filename == "." || rep.Filename == string(filepath.Separator) {
		rep.Filename = "report"
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return Report{}, fmt.Errorf("creating spool file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	hash := sha256.New()
	rep.Size, err = io.Copy(tmp, io.TeeReader(r, hash))
	if err != nil {
		return Report{}, fmt.Errorf("spooling report: %w", err)
	}
	rep.SHA256 = hex.EncodeToString(hash.Sum(nil))

	if err := tmp.Sync(); err != nil {
		return Report{}, fmt.Errorf("syncing spool file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Report{}, fmt.Errorf("closing spool file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.spoolPath(rep.ID)); err != nil {
		return Report{}, fmt.Errorf("placing spool file: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, filename, program, signal, hostname, received, size, sha256)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rep.ID, rep.Filename, rep.Program, rep.Signal, rep.Hostname, rep.Received, rep.Size, rep.SHA256)
	if err != nil {
		_ = os.Remove(s.spoolPath(rep.ID))
		return Report{}, fmt.Errorf("indexing report: %w", err)
	}

	return rep, nil
}

// List returns up to limit reports, newest first. limit <= 0 means a
// default page of 50.
func (s *Store) List(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, program, signal, hostname, received, size, sha256
		FROM reports
		ORDER BY received DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reports []Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.Filename, &rep.Program, &rep.Signal,
			&rep.Hostname, &rep.Received, &rep.Size, &rep.SHA256); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}

	return reports, nil
}

// Get returns the metadata row for one report.
func (s *Store) Get(ctx context.Context, id string) (Report, error) {
	var rep Report
	err := s.db.QueryRowContext(ctx, `
		SELECT id, filename, program, signal, hostname, received, size, sha256
		FROM reports
		WHERE id = ?
	`, id).Scan(&rep.ID, &rep.Filename, &rep.Program, &rep.Signal,
		&rep.Hostname, &rep.Received, &rep.Size, &rep.SHA256)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("querying report %s: %w", id, err)
	}
	return rep, nil
}

// Open opens the spooled bytes of a report for reading. The caller closes
// the returned file.
func (s *Store) Open(ctx context.Context, id string) (Report, *os.File, error) {
	rep, err := s.Get(ctx, id)
	if err != nil {
		return Report{}, nil, err
	}
	f, err := os.Open(s.spoolPath(rep.ID))
	if err != nil {
		return Report{}, nil, fmt.Errorf("opening spooled report: %w", err)
	}
	return rep, f, nil
}

func (s *Store) spoolPath(id string) string {
	return filepath.Join(s.dir, id+".report")
}

// Package journal keeps a local record of state-changing operations: what ran,
// against which service, and how it ended. It exists for the "what happened on
// this box last Tuesday" question; losing it must never break a deployment, so
// writes are best effort.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const dbFilename = "journal.db"

// Outcome values recorded per operation.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id TEXT PRIMARY KEY,
	at TEXT NOT NULL,
	command TEXT NOT NULL,
	service TEXT,
	tag TEXT,
	outcome TEXT NOT NULL,
	detail TEXT
);
CREATE INDEX IF NOT EXISTS operations_at ON operations(at);
`

// Entry is one journaled operation.
type Entry struct {
	ID      string
	At      time.Time
	Command string
	Service string
	Tag     string
	Outcome string
	Detail  string
}

// Journal is an append-mostly log backed by sqlite. A nil Journal is valid
// and drops everything, so callers never have to branch on whether the
// journal opened.
type Journal struct {
	db *sql.DB
}

// Open creates the state directory and journal database as needed.
func Open(stateDir string) (*Journal, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state dir %s: %w", stateDir, err)
	}
	path := filepath.Join(stateDir, dbFilename)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	log.Debug("Journal open", "path", path)
	return &Journal{db: db}, nil
}

// Record appends one entry, filling in the id and timestamp when absent.
func (j *Journal) Record(e Entry) {
	if j == nil || j.db == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := j.db.Exec(
		`INSERT INTO operations (id, at, command, service, tag, outcome, detail) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.At.UTC().Format(time.RFC3339), e.Command, e.Service, e.Tag, e.Outcome, e.Detail,
	)
	if err != nil {
		log.Debug("Could not record journal entry", "command", e.Command, "error", err)
	}
}

// Recent returns the newest entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if j == nil || j.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(
		`SELECT id, at, command, service, tag, outcome, detail FROM operations ORDER BY at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &at, &e.Command, &e.Service, &e.Tag, &e.Outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

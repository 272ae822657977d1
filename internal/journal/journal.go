// Package journal keeps a local audit trail of runs and the timesheet lines
// they created, in a SQLite database. The pipeline writes to it as it goes,
// so an aborted run can be inspected after the fact.
package journal

import (
	"database/sql"
	"errors"
	"time"

	"github.com/dmelo/timeclerk/internal/backend"
)

// Standard errors
var ErrNotFound = errors.New("journal: not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	started_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	since        TIMESTAMP,
	until        TIMESTAMP,
	status       TEXT NOT NULL,
	error        TEXT
);

CREATE TABLE IF NOT EXISTS lines (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	backend_id  INTEGER NOT NULL,
	date        TIMESTAMP NOT NULL,
	task_id     INTEGER NOT NULL,
	project_id  INTEGER NOT NULL,
	description TEXT NOT NULL,
	hours       REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lines_run_id ON lines(run_id);
`

// Run statuses
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// Journal wraps the audit database. It satisfies the pipeline's Recorder
// interface.
type Journal struct {
	db *sql.DB
}

// Run is one recorded pipeline run.
type Run struct {
	ID          string
	StartedAt   time.Time
	CompletedAt *time.Time
	Since       *time.Time
	Until       *time.Time
	Status      string
	Error       *string
}

// Line is one recorded timesheet line.
type Line struct {
	ID          int64
	RunID       string
	BackendID   int64
	Date        time.Time
	TaskID      int64
	ProjectID   int64
	Description string
	Hours       float64
}

// Open opens (and creates, if needed) the journal database at the given DSN.
func Open(dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	// A single connection keeps the foreign_keys pragma in effect and avoids
	// SQLITE_BUSY on concurrent writes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginRun records the start of a run.
func (j *Journal) BeginRun(runID string, startedAt time.Time) error {
	query := `
		INSERT INTO runs (id, started_at, status)
		VALUES (?, ?, ?)
	`

	_, err := j.db.Exec(query, runID, startedAt, StatusRunning)
	return err
}

// RecordWindow stores the computed date window on the run.
func (j *Journal) RecordWindow(runID string, since, until time.Time) error {
	query := `
		UPDATE runs SET since = ?, until = ? WHERE id = ?
	`

	_, err := j.db.Exec(query, since, until, runID)
	return err
}

// RecordLine records one created timesheet line.
func (j *Journal) RecordLine(runID string, entryID int64, entry backend.Entry) error {
	query := `
		INSERT INTO lines (run_id, backend_id, date, task_id, project_id, description, hours)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := j.db.Exec(query,
		runID,
		entryID,
		entry.Date,
		entry.TaskID,
		entry.ProjectID,
		entry.Description,
		entry.Hours,
	)

	return err
}

// FinishRun records the run's outcome.
func (j *Journal) FinishRun(runID string, completedAt time.Time, runErr error) error {
	status := StatusOK
	var errText *string
	if runErr != nil {
		status = StatusFailed
		text := runErr.Error()
		errText = &text
	}

	query := `
		UPDATE runs SET completed_at = ?, status = ?, error = ? WHERE id = ?
	`

	_, err := j.db.Exec(query, completedAt, status, errText, runID)
	return err
}

// GetRun retrieves a run by id.
func (j *Journal) GetRun(runID string) (*Run, error) {
	run := &Run{}

	query := `
		SELECT id, started_at, completed_at, since, until, status, error
		FROM runs
		WHERE id = ?
	`

	err := j.db.QueryRow(query, runID).Scan(
		&run.ID,
		&run.StartedAt,
		&run.CompletedAt,
		&run.Since,
		&run.Until,
		&run.Status,
		&run.Error,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return run, nil
}

// LinesForRun retrieves the lines created by a run, oldest first.
func (j *Journal) LinesForRun(runID string) ([]Line, error) {
	query := `
		SELECT id, run_id, backend_id, date, task_id, project_id, description, hours
		FROM lines
		WHERE run_id = ?
		ORDER BY id ASC
	`

	rows, err := j.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var line Line
		err := rows.Scan(
			&line.ID,
			&line.RunID,
			&line.BackendID,
			&line.Date,
			&line.TaskID,
			&line.ProjectID,
			&line.Description,
			&line.Hours,
		)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// Package checkpoint persists scheduler snapshots in a SQLite journal
// so an interrupted run can be resumed from its last completed step.
//
// The engine itself never touches storage; it only guarantees that its
// state is serializable between steps. This package is one caller of
// that guarantee: append a checkpoint between Execute calls, and load
// the latest one to rebuild the scheduler after a crash.
package checkpoint

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a run has no checkpoints.
var ErrNotFound = errors.New("checkpoint: not found")

// Checkpoint is one persisted scheduler state, identified by the run
// it belongs to and the number of steps completed before it was taken.
type Checkpoint struct {
	RunID     uuid.UUID
	Step      uint64
	State     []byte
	CreatedAt time.Time
}

// Store is a SQLite-backed checkpoint journal. A single store may hold
// checkpoints for many runs, keyed by run ID.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	run_id     TEXT    NOT NULL,
	step       INTEGER NOT NULL,
	state      BLOB    NOT NULL,
	created_at TEXT    NOT NULL,
	PRIMARY KEY (run_id, step)
);`

// Open creates or opens a checkpoint journal at the given path. The
// special path ":memory:" keeps the journal in memory, which is only
// useful in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: cannot open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint: cannot create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records the scheduler state captured after the given number
// of completed steps. Appending the same step twice for one run is an
// error; a run's journal is strictly forward-moving.
func (s *Store) Append(runID uuid.UUID, step uint64, state []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO checkpoints (run_id, step, state, created_at) VALUES (?, ?, ?, ?)`,
		runID.String(), int64(step), state, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("checkpoint: append run %s step %d: %w", runID, step, err)
	}
	return nil
}

// Latest returns the run's most recent checkpoint, or ErrNotFound.
func (s *Store) Latest(runID uuid.UUID) (*Checkpoint, error) {
	row := s.db.QueryRow(
		`SELECT step, state, created_at FROM checkpoints
		 WHERE run_id = ? ORDER BY step DESC LIMIT 1`,
		runID.String(),
	)
	var (
		step    int64
		state   []byte
		created string
	)
	if err := row.Scan(&step, &state, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: run %s", ErrNotFound, runID)
		}
		return nil, fmt.Errorf("checkpoint: load run %s: %w", runID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: corrupt timestamp for run %s: %w", runID, err)
	}
	return &Checkpoint{
		RunID:     runID,
		Step:      uint64(step),
		State:     state,
		CreatedAt: createdAt,
	}, nil
}

// Runs lists all run IDs with at least one checkpoint, most recent
// first.
func (s *Store) Runs() ([]uuid.UUID, error) {
	rows, err := s.db.Query(
		`SELECT run_id FROM checkpoints GROUP BY run_id ORDER BY MAX(created_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: list runs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("checkpoint: list runs: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: corrupt run id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Prune deletes all of a run's checkpoints except the latest.
func (s *Store) Prune(runID uuid.UUID) error {
	_, err := s.db.Exec(
		`DELETE FROM checkpoints WHERE run_id = ?
		 AND step < (SELECT MAX(step) FROM checkpoints WHERE run_id = ?)`,
		runID.String(), runID.String(),
	)
	if err != nil {
		return fmt.Errorf("checkpoint: prune run %s: %w", runID, err)
	}
	return nil
}

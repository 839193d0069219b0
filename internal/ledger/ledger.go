// Package ledger records generation and gate runs in SQLite so CI
// history survives across checkouts. The ledger is advisory: losing it
// loses history, never correctness, because the committed generated
// source remains the only durable projection of the address space.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Outcome classifies a recorded run.
type Outcome string

const (
	OutcomeGenerated Outcome = "generated"
	OutcomeMatch     Outcome = "match"
	OutcomeMismatch  Outcome = "mismatch"
	OutcomeFailed    Outcome = "failed"
)

// Run is one recorded pipeline or gate execution.
type Run struct {
	ID            string
	CreatedAt     time.Time
	Manifest      string
	NodeSetDigest string
	SourceDigest  string
	Outcome       Outcome
	Detail        string
}

// Ledger is a SQLite-backed run log. Single writer; WAL mode keeps
// concurrent readers unblocked.
type Ledger struct {
	db *sql.DB
}

// Open creates or opens the ledger database at path. Idempotent: the
// schema and pragmas apply on every open.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger: %w", err)
	}

	// SQLite supports one writer at a time; a second connection would
	// only manufacture SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// RecordRun inserts a run, filling ID and CreatedAt when unset, and
// returns the stored record.
func (l *Ledger) RecordRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, manifest, nodeset_digest, source_digest, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Manifest,
		run.NodeSetDigest,
		run.SourceDigest,
		string(run.Outcome),
		run.Detail,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// LastRun returns the most recent run for a manifest, or ok=false when
// the manifest has no history.
func (l *Ledger) LastRun(ctx context.Context, manifest string) (Run, bool, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, created_at, manifest, nodeset_digest, source_digest, outcome, detail
		FROM runs
		WHERE manifest = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, manifest)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("last run: %w", err)
	}
	return run, true, nil
}

// RunsByOutcome returns up to limit runs with the given outcome, newest
// first. limit <= 0 means no limit.
func (l *Ledger) RunsByOutcome(ctx context.Context, outcome Outcome, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means unlimited
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, created_at, manifest, nodeset_digest, source_digest, outcome, detail
		FROM runs
		WHERE outcome = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, string(outcome), limit)
	if err != nil {
		return nil, fmt.Errorf("runs by outcome: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("runs by outcome: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runs by outcome: %w", err)
	}
	return out, nil
}

func scanRun(scan func(...any) error) (Run, error) {
	var (
		run     Run
		created string
		outcome string
	)
	if err := scan(&run.ID, &created, &run.Manifest, &run.NodeSetDigest,
		&run.SourceDigest, &outcome, &run.Detail); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("bad created_at %q: %w", created, err)
	}
	run.CreatedAt = t
	run.Outcome = Outcome(outcome)
	return run, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

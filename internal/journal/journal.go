// internal/journal/journal.go
// Package journal is a local SQLite audit trail of every admin mutation:
// what was attempted, the before/after state, and whether the optimistic
// change was confirmed or rolled back. It is best-effort by contract —
// callers log journal failures and move on, they never fail the mutation.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Outcome of a journaled mutation.
const (
	OutcomeConfirmed  = "confirmed"
	OutcomeRolledBack = "rolled_back"
	OutcomeRejected   = "rejected"
)

// Entry is one audit row.
type Entry struct {
	ID        int64
	MatchID   string
	Action    string
	Actor     string
	Before    map[string]any
	After     map[string]any
	Outcome   string
	Detail    string
	CreatedAt time.Time
}

// Journal wraps the audit database.
type Journal struct {
	db *sql.DB
}

// Open opens (creating directories as needed) the journal database and
// applies embedded migrations.
func Open(filename string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite3", filename+"?_fk=1")
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal database: %w", err)
	}
	return &Journal{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record writes one audit row.
func (j *Journal) Record(ctx context.Context, entry Entry) error {
	before, err := marshalState(entry.Before)
	if err != nil {
		return err
	}
	after, err := marshalState(entry.After)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO mutation_journal (match_id, action, actor, before_state, after_state, outcome, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.MatchID, entry.Action, entry.Actor, before, after, entry.Outcome, entry.Detail, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// ListRecent returns the most recent entries for a match, newest first.
func (j *Journal) ListRecent(ctx context.Context, matchID string, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, match_id, action, actor, before_state, after_state, outcome, detail, created_at
		 FROM mutation_journal WHERE match_id = ? ORDER BY id DESC LIMIT ?`,
		matchID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var before, after sql.NullString
		if err := rows.Scan(&entry.ID, &entry.MatchID, &entry.Action, &entry.Actor, &before, &after, &entry.Outcome, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry.Before = unmarshalState(before)
		entry.After = unmarshalState(after)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// PruneOlderThan deletes entries older than the cutoff and reports how many
// were removed.
func (j *Journal) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM mutation_journal WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune journal entries: %w", err)
	}
	return res.RowsAffected()
}

func marshalState(state map[string]any) (sql.NullString, error) {
	if len(state) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal journal state: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalState(raw sql.NullString) map[string]any {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var state map[string]any
	if err := json.Unmarshal([]byte(raw.String), &state); err != nil {
		return nil
	}
	return state
}

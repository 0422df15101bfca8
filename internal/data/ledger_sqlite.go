package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// SQLiteLedger is the local ledger backend
type SQLiteLedger interface {
	repo.LedgerRepo
	repo.LedgerReader
	Path() string
	Close() error
}

// sqliteLedgerRepo stores ledger rows in a local SQLite database
type sqliteLedgerRepo struct {
	db   *sql.DB
	path string
}

// NewSQLiteLedgerRepo opens (or creates) the ledger database
func NewSQLiteLedgerRepo(dbPath string) (SQLiteLedger, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ledger (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			display_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			content TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_ledger_recorded_at ON ledger(recorded_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &sqliteLedgerRepo{db: db, path: dbPath}, nil
}

// Append inserts a ledger row
func (r *sqliteLedgerRepo) Append(ctx context.Context, entry domain.LedgerEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger (recorded_at, display_name, kind, content)
		VALUES (?, ?, ?, ?)
	`,
		entry.RecordedAt.UnixMilli(),
		entry.DisplayName,
		string(entry.Kind),
		entry.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger row: %w", err)
	}
	return nil
}

// Recent returns the latest rows, newest first
func (r *sqliteLedgerRepo) Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT recorded_at, display_name, kind, content
		FROM ledger
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var recordedAt int64
		var kind string
		if err := rows.Scan(&recordedAt, &e.DisplayName, &kind, &e.Content); err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		e.RecordedAt = time.UnixMilli(recordedAt)
		e.Kind = domain.EntryKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Path returns the database file path
func (r *sqliteLedgerRepo) Path() string {
	return r.path
}

// Close closes the database
func (r *sqliteLedgerRepo) Close() error {
	return r.db.Close()
}

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteLedger keeps attempt counts in a local SQLite file, so limits survive
// restarts without any external service. This is the default backend for
// standalone deployments.
type SQLiteLedger struct {
	db *sql.DB
}

// OpenSQLiteLedger opens (creating if needed) the ledger database at path.
func OpenSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}
	// Single writer; the session loop serializes increments anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS attempt_counts (
		key   TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger table: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

func (l *SQLiteLedger) Count(ctx context.Context, key string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT count FROM attempt_counts WHERE key = ?`, key).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger count: %w", err)
	}
	return n, nil
}

func (l *SQLiteLedger) Increment(ctx context.Context, key string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `
		INSERT INTO attempt_counts (key, count) VALUES (?, 1)
		ON CONFLICT (key) DO UPDATE SET count = count + 1
		RETURNING count`, key).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("ledger increment: %w", err)
	}
	return n, nil
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/deusflow/clipping/internal/logger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS clipping_runs (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	item_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS clipping_items (
	run_id TEXT NOT NULL REFERENCES clipping_runs(id),
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	link TEXT NOT NULL,
	source TEXT NOT NULL,
	published_at TIMESTAMP NOT NULL,
	query TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_clipping_runs_created_at ON clipping_runs(created_at);
`

// OpenSQLite opens (creating if needed) the archive file at path.
func OpenSQLite(ctx context.Context, path string) (Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite archive: %w", err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Debug("sqlite archive ready", "path", path)
	return &sqlArchive{db: db}, nil
}

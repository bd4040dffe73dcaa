package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/deusflow/clipping/internal/logger"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS clipping_runs (
	id UUID PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	item_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS clipping_items (
	run_id UUID NOT NULL REFERENCES clipping_runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	link TEXT NOT NULL,
	source VARCHAR(200) NOT NULL DEFAULT '',
	published_at TIMESTAMPTZ NOT NULL,
	query TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_clipping_runs_created_at ON clipping_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_clipping_items_link ON clipping_items(link);
`

// OpenPostgres connects to PostgreSQL and makes sure the schema exists.
func OpenPostgres(ctx context.Context, connectionString string) (Archive, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("PostgreSQL archive connected")
	return &sqlArchive{db: db, numbered: true}, nil
}

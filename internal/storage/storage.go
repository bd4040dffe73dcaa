// Package storage archives published digests. The archive is write-mostly:
// the pipeline never reads it back.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/clipping/internal/news"
)

// Run is one published digest.
type Run struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Items     []news.Item
}

// NewRun stamps items with a fresh run id.
func NewRun(items []news.Item, now time.Time) Run {
	return Run{ID: uuid.New(), CreatedAt: now, Items: items}
}

type RunSummary struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Items     int
}

type Archive interface {
	SaveRun(ctx context.Context, run Run) error
	RecentRuns(ctx context.Context, limit int) ([]RunSummary, error)
	Close() error
}

// Open picks the backend from the DSN: postgres:// and postgresql:// URLs go
// to PostgreSQL, anything else is a SQLite file path.
func Open(ctx context.Context, dsn string) (Archive, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty archive DSN")
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(ctx, dsn)
}

// sqlArchive holds the queries shared by both backends. Queries are written
// with ? placeholders and rebound for drivers that number them.
type sqlArchive struct {
	db       *sql.DB
	numbered bool
}

func (a *sqlArchive) rebind(query string) string {
	if !a.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (a *sqlArchive) SaveRun(ctx context.Context, run Run) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, a.rebind(`
		INSERT INTO clipping_runs (id, created_at, item_count)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`), run.ID.String(), run.CreatedAt.UTC(), len(run.Items))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s already archived", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx, a.rebind(`
		INSERT INTO clipping_items (run_id, position, title, link, source, published_at, query)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, it := range run.Items {
		if _, err := stmt.ExecContext(ctx, run.ID.String(), i, it.Title, it.Link, it.Source, it.PublishedAt.UTC(), it.Query); err != nil {
			return fmt.Errorf("failed to insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RecentRuns lists the newest runs first.
func (a *sqlArchive) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := a.db.QueryContext(ctx, a.rebind(`
		SELECT id, created_at, item_count
		FROM clipping_runs
		ORDER BY created_at DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			id string
			s  RunSummary
		)
		if err := rows.Scan(&id, &s.CreatedAt, &s.Items); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad run id %q: %w", id, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *sqlArchive) Close() error {
	return a.db.Close()
}

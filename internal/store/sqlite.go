package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // driver: sqlite
)

const defaultSQLiteDSN = "file:qualify.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// SQLiteStore keeps drafts in a local SQLite file. Timestamps are stored as
// unix nanoseconds.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = defaultSQLiteDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS qualify_drafts (
  draft_id   TEXT PRIMARY KEY,
  label      TEXT NOT NULL DEFAULT '',
  data       TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS qualify_drafts_updated_idx ON qualify_drafts (updated_at DESC);
`

const upsertSQLite = `
INSERT INTO qualify_drafts (` + draftColumns + `)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (draft_id) DO UPDATE
	SET label = excluded.label, data = excluded.data, updated_at = excluded.updated_at`

const restoreSQLite = `
INSERT INTO qualify_drafts (` + draftColumns + `)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (draft_id) DO UPDATE
	SET label = excluded.label, data = excluded.data,
		created_at = excluded.created_at, updated_at = excluded.updated_at`

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDraft(ctx context.Context, d *Draft) error {
	prepareSave(d, time.Now().UTC())
	dataJSON, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, upsertSQLite,
		d.ID.String(), d.Label, string(dataJSON), d.CreatedAt.UnixNano(), d.UpdatedAt.UnixNano(),
	); err != nil {
		return err
	}

	// An update keeps the original creation time.
	var created int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM qualify_drafts WHERE draft_id = ?`, d.ID.String(),
	).Scan(&created); err != nil {
		return err
	}
	d.CreatedAt = time.Unix(0, created).UTC()
	return nil
}

func (s *SQLiteStore) GetDraft(ctx context.Context, id uuid.UUID) (*Draft, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+draftColumns+` FROM qualify_drafts WHERE draft_id = ?`, id.String())
	d, err := scanSQLiteDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (s *SQLiteStore) ListDrafts(ctx context.Context, limit int) ([]*Draft, error) {
	return s.queryDrafts(ctx, `
		SELECT `+draftColumns+` FROM qualify_drafts
		ORDER BY updated_at DESC LIMIT ?`, listLimit(limit))
}

func (s *SQLiteStore) AllDrafts(ctx context.Context) ([]*Draft, error) {
	return s.queryDrafts(ctx, `
		SELECT `+draftColumns+` FROM qualify_drafts
		ORDER BY created_at, draft_id`)
}

func (s *SQLiteStore) queryDrafts(ctx context.Context, query string, args ...any) ([]*Draft, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Draft
	for rows.Next() {
		d, err := scanSQLiteDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM qualify_drafts WHERE draft_id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) RestoreDrafts(ctx context.Context, drafts []*Draft) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin restore: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, d := range drafts {
		if err := prepareRestore(d, now); err != nil {
			return 0, err
		}
		dataJSON, err := json.Marshal(d.Data)
		if err != nil {
			return 0, fmt.Errorf("marshal draft %s: %w", d.ID, err)
		}
		if _, err := tx.ExecContext(ctx, restoreSQLite,
			d.ID.String(), d.Label, string(dataJSON), d.CreatedAt.UnixNano(), d.UpdatedAt.UnixNano(),
		); err != nil {
			return 0, fmt.Errorf("restore draft %s: %w", d.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit restore: %w", err)
	}
	return len(drafts), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDraft(row rowScanner) (*Draft, error) {
	var (
		id       string
		dataJSON string
		created  int64
		updated  int64
	)
	d := &Draft{}
	if err := row.Scan(&id, &d.Label, &dataJSON, &created, &updated); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("decode draft id %q: %w", id, err)
	}
	d.ID = parsed
	if err := json.Unmarshal([]byte(dataJSON), &d.Data); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	d.CreatedAt = time.Unix(0, created).UTC()
	d.UpdatedAt = time.Unix(0, updated).UTC()
	return d, nil
}

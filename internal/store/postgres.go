package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaPostgres); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS qualify_drafts (
	draft_id   UUID PRIMARY KEY,
	label      TEXT NOT NULL DEFAULT '',
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS qualify_drafts_updated_idx ON qualify_drafts (updated_at DESC);
`

const draftColumns = `draft_id, label, data, created_at, updated_at`

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveDraft(ctx context.Context, d *Draft) error {
	prepareSave(d, time.Now().UTC())
	dataJSON, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO qualify_drafts (`+draftColumns+`)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (draft_id) DO UPDATE
			SET label = EXCLUDED.label, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		RETURNING created_at`,
		d.ID, d.Label, dataJSON, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.CreatedAt)
}

func (s *PostgresStore) GetDraft(ctx context.Context, id uuid.UUID) (*Draft, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+draftColumns+` FROM qualify_drafts WHERE draft_id = $1`, id)
	d, err := scanDraft(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func (s *PostgresStore) ListDrafts(ctx context.Context, limit int) ([]*Draft, error) {
	return s.queryDrafts(ctx, `
		SELECT `+draftColumns+` FROM qualify_drafts
		ORDER BY updated_at DESC LIMIT $1`, listLimit(limit))
}

func (s *PostgresStore) AllDrafts(ctx context.Context) ([]*Draft, error) {
	return s.queryDrafts(ctx, `
		SELECT `+draftColumns+` FROM qualify_drafts
		ORDER BY created_at, draft_id`)
}

func (s *PostgresStore) queryDrafts(ctx context.Context, query string, args ...any) ([]*Draft, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM qualify_drafts WHERE draft_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) RestoreDrafts(ctx context.Context, drafts []*Draft) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin restore: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	for _, d := range drafts {
		if err := prepareRestore(d, now); err != nil {
			return 0, err
		}
		dataJSON, err := json.Marshal(d.Data)
		if err != nil {
			return 0, fmt.Errorf("marshal draft %s: %w", d.ID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO qualify_drafts (`+draftColumns+`)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (draft_id) DO UPDATE
				SET label = EXCLUDED.label, data = EXCLUDED.data,
					created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at`,
			d.ID, d.Label, dataJSON, d.CreatedAt, d.UpdatedAt,
		); err != nil {
			return 0, fmt.Errorf("restore draft %s: %w", d.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit restore: %w", err)
	}
	return len(drafts), nil
}

func scanDraft(row pgx.Row) (*Draft, error) {
	d := &Draft{}
	var dataJSON []byte
	if err := row.Scan(&d.ID, &d.Label, &dataJSON, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(dataJSON, &d.Data); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", d.ID, err)
	}
	return d, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when deleting a draft that does not exist.
var ErrNotFound = errors.New("draft not found")

// Draft is a saved, not yet submitted application body. Only the latest
// version of each draft is kept.
type Draft struct {
	ID        uuid.UUID      `json:"id"`
	Label     string         `json:"label,omitempty"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store persists drafts.
type Store interface {
	// SaveDraft inserts or replaces a draft. A nil ID is assigned on insert.
	SaveDraft(ctx context.Context, d *Draft) error
	// GetDraft returns nil, nil when the draft does not exist.
	GetDraft(ctx context.Context, id uuid.UUID) (*Draft, error)
	// ListDrafts returns the most recently updated drafts. The limit is
	// clamped to maxListLimit; zero or less means defaultListLimit.
	ListDrafts(ctx context.Context, limit int) ([]*Draft, error)
	// AllDrafts returns every draft, oldest first.
	AllDrafts(ctx context.Context) ([]*Draft, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) error
	// RestoreDrafts upserts drafts from a backup, keeping their timestamps.
	RestoreDrafts(ctx context.Context, drafts []*Draft) (int, error)
	Close() error
}

// Driver selects the storage backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverNone     Driver = "none"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Open connects to the configured backend and makes sure the schema exists.
// DriverNone returns a nil Store.
func Open(ctx context.Context, driver Driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite:
		s, err := NewSQLiteStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := NewPostgresStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

func listLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}

func prepareSave(d *Draft, now time.Time) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Data == nil {
		d.Data = map[string]any{}
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
}

func prepareRestore(d *Draft, now time.Time) error {
	if d.ID == uuid.Nil {
		return errors.New("restore: draft without id")
	}
	if d.Data == nil {
		d.Data = map[string]any{}
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	return nil
}

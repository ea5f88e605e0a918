// Package postgres stores reports in PostgreSQL through the pgx driver.
//
// Reports are kept as JSONB next to the indexed coordinate and storage
// time. The schema is created on first use.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/observability"
	"github.com/syslex/artitracker/pkg/report"
	"github.com/syslex/artitracker/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifact_reports (
  id UUID PRIMARY KEY,
  coordinate TEXT NOT NULL,
  stored_at TIMESTAMP WITH TIME ZONE NOT NULL,
  report JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artifact_reports_coordinate ON artifact_reports (coordinate, stored_at DESC);
`

// Store is a PostgreSQL-backed [store.Store].
type Store struct {
	db  *sql.DB
	now func() time.Time

	schemaOnce sync.Once
	schemaErr  error
}

// New opens a connection pool for dsn and verifies it.
func New(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, aterrors.New(aterrors.ErrCodeInvalidInput, "postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "ping postgres")
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an open database handle.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			s.schemaErr = aterrors.Wrap(aterrors.ErrCodeStorage, err, "create schema")
		}
	})
	return s.schemaErr
}

func (s *Store) Save(ctx context.Context, r *report.Report) (store.Record, error) {
	rec, err := s.save(ctx, r)
	size := 0
	if err == nil {
		size = rec.size
	}
	observability.Store().OnSave(ctx, store.BackendPostgres, size, err)
	return rec.Record, err
}

type saved struct {
	store.Record
	size int
}

func (s *Store) save(ctx context.Context, r *report.Report) (saved, error) {
	rec, err := store.NewRecord(r, s.now())
	if err != nil {
		return saved{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return saved{}, err
	}
	data, err := report.Marshal(r)
	if err != nil {
		return saved{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "encode report")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifact_reports (id, coordinate, stored_at, report) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.Coordinate, rec.StoredAt, string(data))
	if err != nil {
		return saved{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "insert record %s", rec.ID)
	}
	return saved{Record: rec, size: len(data)}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (store.Record, error) {
	var (
		rec  store.Record
		data []byte
	)
	if err := row.Scan(&rec.ID, &rec.Coordinate, &rec.StoredAt, &data); err != nil {
		return store.Record{}, err
	}
	r, err := report.Unmarshal(data)
	if err != nil {
		return store.Record{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "decode record %s", rec.ID)
	}
	rec.StoredAt = rec.StoredAt.UTC()
	rec.Report = r
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (store.Record, error) {
	if err := aterrors.ValidateReportID(id); err != nil {
		return store.Record{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return store.Record{}, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, coordinate, stored_at, report FROM artifact_reports WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		observability.Store().OnMiss(ctx, store.BackendPostgres)
		return store.Record{}, store.NotFound(id)
	}
	if err != nil {
		return store.Record{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "get record %s", id)
	}
	observability.Store().OnHit(ctx, store.BackendPostgres)
	return rec, nil
}

func (s *Store) List(ctx context.Context, coordinate string, limit int) ([]store.Record, error) {
	if err := aterrors.ValidateCoordinate(coordinate); err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, coordinate, stored_at, report FROM artifact_reports
WHERE coordinate = $1
ORDER BY stored_at DESC
LIMIT $2`, coordinate, store.Limit(limit))
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "list records for %s", coordinate)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "scan record")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "list records for %s", coordinate)
	}
	return out, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)

// Package store keeps the history of generated reports.
//
// A [Store] saves reports as [Record]s keyed by a UUID and indexed by the
// artifact coordinate ("group:name") of the reported project, so the
// reports of one project can be listed newest first.
//
// Backends:
//   - [MemoryStore]: in-process, for tests and the development server
//   - [FileStore]: JSON files in a directory, the CLI default
//   - store/redis, store/mongo, store/s3, store/postgres: shared backends
//     for the tracking server
//
// Every backend reports saves, hits and misses to [observability.Store].
package store

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/report"
)

// DefaultListLimit is used by backends when List is called with limit <= 0.
const DefaultListLimit = 50

// Store persists reports.
type Store interface {
	// Save stores r under a new ID. The report must name its artifact.
	Save(ctx context.Context, r *report.Report) (Record, error)

	// Get returns the record with the given ID, or a REPORT_NOT_FOUND error.
	Get(ctx context.Context, id string) (Record, error)

	// List returns up to limit records for coordinate, newest first.
	List(ctx context.Context, coordinate string, limit int) ([]Record, error)

	// Close releases backend resources.
	Close() error
}

// Record is a stored report.
type Record struct {
	ID         string         `json:"id"`
	Coordinate string         `json:"coordinate"`
	StoredAt   time.Time      `json:"storedAt"`
	Report     *report.Report `json:"report"`
}

// NewRecord validates r and wraps it in a record with a fresh ID.
func NewRecord(r *report.Report, now time.Time) (Record, error) {
	if err := Validate(r); err != nil {
		return Record{}, err
	}
	return Record{
		ID:         uuid.NewString(),
		Coordinate: r.Coordinate(),
		StoredAt:   now.UTC().Truncate(time.Millisecond),
		Report:     r,
	}, nil
}

// Validate checks that r can be indexed: it must name its artifact.
func Validate(r *report.Report) error {
	if r == nil {
		return aterrors.New(aterrors.ErrCodeInvalidReport, "report is empty")
	}
	if r.Artifact == nil || r.Artifact.Name == nil || *r.Artifact.Name == "" {
		return aterrors.New(aterrors.ErrCodeInvalidReport, "report has no artifact name")
	}
	return aterrors.ValidateCoordinate(r.Coordinate())
}

// Marshal encodes rec as JSON.
func Marshal(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "encode record %s", rec.ID)
	}
	return data, nil
}

// Unmarshal decodes a record encoded by [Marshal].
func Unmarshal(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "decode record")
	}
	return rec, nil
}

// NotFound returns the error backends use for a missing ID.
func NotFound(id string) error {
	return aterrors.New(aterrors.ErrCodeReportNotFound, "report %s not found", id)
}

// Newest sorts records by StoredAt, newest first, and truncates the result
// to limit (DefaultListLimit when limit <= 0).
func Newest(records []Record, limit int) []Record {
	slices.SortStableFunc(records, func(a, b Record) int {
		return b.StoredAt.Compare(a.StoredAt)
	})
	limit = Limit(limit)
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}

// Limit normalizes a caller supplied limit.
func Limit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

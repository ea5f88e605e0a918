package store

import (
	"context"
	"sync"
	"time"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/observability"
	"github.com/syslex/artitracker/pkg/report"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record), now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, r *report.Report) (Record, error) {
	rec, err := NewRecord(r, s.now())
	if err != nil {
		observability.Store().OnSave(ctx, BackendMemory, 0, err)
		return Record{}, err
	}

	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()

	observability.Store().OnSave(ctx, BackendMemory, 0, nil)
	return rec, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	if err := aterrors.ValidateReportID(id); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		observability.Store().OnMiss(ctx, BackendMemory)
		return Record{}, NotFound(id)
	}
	observability.Store().OnHit(ctx, BackendMemory)
	return rec, nil
}

func (s *MemoryStore) List(ctx context.Context, coordinate string, limit int) ([]Record, error) {
	if err := aterrors.ValidateCoordinate(coordinate); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []Record
	for _, rec := range s.records {
		if rec.Coordinate == coordinate {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()
	return Newest(out, limit), nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/observability"
	"github.com/syslex/artitracker/pkg/report"
)

// FileStore keeps one JSON file per record in a directory.
type FileStore struct {
	mu     sync.RWMutex
	dir    string
	now    func() time.Time
	logger *log.Logger
}

// DefaultDir returns ~/.local/share/artitracker/reports, or the
// $XDG_DATA_HOME equivalent.
func DefaultDir() (string, error) {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, "artitracker", "reports"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", aterrors.Wrap(aterrors.ErrCodeStorage, err, "get home dir")
	}
	return filepath.Join(home, ".local", "share", "artitracker", "reports"), nil
}

// NewFileStore creates a file store in dir. An empty dir selects
// [DefaultDir]. The directory is created if it does not exist.
func NewFileStore(dir string, logger *log.Logger) (*FileStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "create report dir")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FileStore{dir: dir, now: time.Now, logger: logger}, nil
}

// Dir returns the directory records are stored in.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, r *report.Report) (Record, error) {
	rec, err := NewRecord(r, s.now())
	if err != nil {
		observability.Store().OnSave(ctx, BackendFile, 0, err)
		return Record{}, err
	}
	data, err := Marshal(rec)
	if err != nil {
		observability.Store().OnSave(ctx, BackendFile, 0, err)
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to a temp file first so readers never see a partial record.
	tmp := s.path(rec.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		err = aterrors.Wrap(aterrors.ErrCodeStorage, err, "write record")
		observability.Store().OnSave(ctx, BackendFile, 0, err)
		return Record{}, err
	}
	if err := os.Rename(tmp, s.path(rec.ID)); err != nil {
		_ = os.Remove(tmp)
		err = aterrors.Wrap(aterrors.ErrCodeStorage, err, "write record")
		observability.Store().OnSave(ctx, BackendFile, 0, err)
		return Record{}, err
	}

	observability.Store().OnSave(ctx, BackendFile, len(data), nil)
	return rec, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (Record, error) {
	if err := aterrors.ValidateReportID(id); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		observability.Store().OnMiss(ctx, BackendFile)
		return Record{}, NotFound(id)
	}
	if err != nil {
		return Record{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "read record %s", id)
	}
	observability.Store().OnHit(ctx, BackendFile)
	return Unmarshal(data)
}

func (s *FileStore) List(ctx context.Context, coordinate string, limit int) ([]Record, error) {
	if err := aterrors.ValidateCoordinate(coordinate); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "list records")
	}

	var out []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.logger.Warn("skipping unreadable record", "file", e.Name(), "error", err)
			continue
		}
		rec, err := Unmarshal(data)
		if err != nil {
			s.logger.Warn("skipping corrupt record", "file", e.Name(), "error", err)
			continue
		}
		if rec.Coordinate == coordinate {
			out = append(out, rec)
		}
	}
	return Newest(out, limit), nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)

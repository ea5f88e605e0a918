package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/report"
)

func str(s string) *string { return &s }

func sampleReport(group, name, version string) *report.Report {
	at := time.Date(2024, 12, 22, 22, 37, 14, 0, time.UTC)
	return &report.Report{
		Artifact:    &report.ArtifactIdentity{Group: str(group), Name: str(name), Version: str(version)},
		Programming: &report.Programming{Language: report.LanguageJava, Version: str("21")},
		GeneratedAt: &at,
		Dependencies: []report.Reference{
			{ArtifactIdentity: report.ArtifactIdentity{Group: str("org.slf4j"), Name: str("slf4j-api")}, Inclusion: report.InclusionDependency},
		},
	}
}

// clock returns a now func that advances one minute per call.
func clock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newStores(t *testing.T) map[string]Store {
	mem := NewMemoryStore()
	mem.now = clock()

	fs, err := NewFileStore(t.TempDir(), log.New(io.Discard))
	require.NoError(t, err)
	fs.now = clock()

	return map[string]Store{BackendMemory: mem, BackendFile: fs}
}

func TestStoreSaveGet(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			r := sampleReport("com.example", "app", "1.0.0")

			rec, err := s.Save(ctx, r)
			require.NoError(t, err)
			assert.NoError(t, uuid.Validate(rec.ID))
			assert.Equal(t, "com.example:app", rec.Coordinate)
			assert.False(t, rec.StoredAt.IsZero())

			got, err := s.Get(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)
			assert.True(t, rec.StoredAt.Equal(got.StoredAt))

			want, _ := report.Marshal(r)
			have, _ := report.Marshal(got.Report)
			assert.Equal(t, string(want), string(have))
		})
	}
}

func TestStoreGetErrors(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Get(ctx, uuid.NewString())
			assert.True(t, aterrors.Is(err, aterrors.ErrCodeReportNotFound), "got %v", err)

			_, err = s.Get(ctx, "../../etc/passwd")
			assert.True(t, aterrors.Is(err, aterrors.ErrCodeInvalidInput), "got %v", err)
		})
	}
}

func TestStoreSaveRejectsAnonymousReport(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, r := range []*report.Report{nil, {}, {Artifact: &report.ArtifactIdentity{Group: str("g")}}} {
				_, err := s.Save(context.Background(), r)
				assert.True(t, aterrors.Is(err, aterrors.ErrCodeInvalidReport), "got %v", err)
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var ids []string
			for _, v := range []string{"1.0.0", "1.1.0", "1.2.0"} {
				rec, err := s.Save(ctx, sampleReport("com.example", "app", v))
				require.NoError(t, err)
				ids = append(ids, rec.ID)
			}
			_, err := s.Save(ctx, sampleReport("com.example", "other", "9"))
			require.NoError(t, err)

			recs, err := s.List(ctx, "com.example:app", 0)
			require.NoError(t, err)
			require.Len(t, recs, 3)
			assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{recs[0].ID, recs[1].ID, recs[2].ID})

			recs, err = s.List(ctx, "com.example:app", 2)
			require.NoError(t, err)
			assert.Len(t, recs, 2)
			assert.Equal(t, "1.2.0", *recs[0].Report.Artifact.Version)

			recs, err = s.List(ctx, "com.example:missing", 10)
			require.NoError(t, err)
			assert.Empty(t, recs)

			_, err = s.List(ctx, "a/b", 10)
			assert.True(t, aterrors.Is(err, aterrors.ErrCodeInvalidInput))
		})
	}
}

func TestFileStoreSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, log.New(io.Discard))
	require.NoError(t, err)

	_, err = s.Save(context.Background(), sampleReport("com.example", "app", "1"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	recs, err := s.List(context.Background(), "com.example:app", 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", BackendFile, false},
		{"file", BackendFile, false},
		{"Redis", BackendRedis, false},
		{"mongodb", BackendMongo, false},
		{"minio", BackendS3, false},
		{"pg", BackendPostgres, false},
		{"memory", BackendMemory, false},
		{"etcd", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			if tt.wantErr {
				assert.True(t, aterrors.Is(err, aterrors.ErrCodeUnsupported))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewest(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var recs []Record
	for i := 0; i < DefaultListLimit+5; i++ {
		recs = append(recs, Record{ID: uuid.NewString(), StoredAt: base.Add(time.Duration(i) * time.Second)})
	}
	got := Newest(recs, 0)
	require.Len(t, got, DefaultListLimit)
	assert.True(t, got[0].StoredAt.After(got[1].StoredAt))
}

// Package s3 stores reports as objects in an S3-compatible bucket.
//
// Records live at "reports/<id>.json". For every record an empty marker
// object "artifacts/<coordinate>/<inverted time>-<id>" is written so a
// prefix listing returns the records of one artifact newest first.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/observability"
	"github.com/syslex/artitracker/pkg/report"
	"github.com/syslex/artitracker/pkg/store"
)

// Config configures the bucket connection.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store is an S3-backed [store.Store].
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	now        func() time.Time

	initOnce sync.Once
	initErr  error
}

// New creates a store for the bucket in cfg. The bucket is created on
// first use if it does not exist.
func New(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, aterrors.New(aterrors.ErrCodeInvalidInput, "s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, aterrors.New(aterrors.ErrCodeInvalidInput, "s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, aterrors.New(aterrors.ErrCodeInvalidInput, "s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "init s3 client")
	}
	return &Store{client: client, bucketName: bucket, region: region, now: time.Now}, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = aterrors.Wrap(aterrors.ErrCodeStorage, err, "check bucket %s", s.bucketName)
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region}); err != nil {
			s.initErr = aterrors.Wrap(aterrors.ErrCodeStorage, err, "create bucket %s", s.bucketName)
		}
	})
	return s.initErr
}

func recordKey(id string) string {
	return "reports/" + id + ".json"
}

func indexPrefix(coord string) string {
	return "artifacts/" + coord + "/"
}

// indexKey sorts lexically from newest to oldest.
func indexKey(rec store.Record) string {
	return fmt.Sprintf("%s%019d-%s", indexPrefix(rec.Coordinate), math.MaxInt64-rec.StoredAt.UnixNano(), rec.ID)
}

func (s *Store) Save(ctx context.Context, r *report.Report) (store.Record, error) {
	rec, n, err := s.save(ctx, r)
	observability.Store().OnSave(ctx, store.BackendS3, n, err)
	return rec, err
}

func (s *Store) save(ctx context.Context, r *report.Report) (store.Record, int, error) {
	rec, err := store.NewRecord(r, s.now())
	if err != nil {
		return store.Record{}, 0, err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return store.Record{}, 0, err
	}
	data, err := store.Marshal(rec)
	if err != nil {
		return store.Record{}, 0, err
	}

	_, err = s.client.PutObject(ctx, s.bucketName, recordKey(rec.ID), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return store.Record{}, 0, aterrors.Wrap(aterrors.ErrCodeStorage, err, "put record %s", rec.ID)
	}
	_, err = s.client.PutObject(ctx, s.bucketName, indexKey(rec), bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	if err != nil {
		return store.Record{}, 0, aterrors.Wrap(aterrors.ErrCodeStorage, err, "index record %s", rec.ID)
	}
	return rec, len(data), nil
}

func (s *Store) Get(ctx context.Context, id string) (store.Record, error) {
	if err := aterrors.ValidateReportID(id); err != nil {
		return store.Record{}, err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return store.Record{}, err
	}
	data, err := s.read(ctx, recordKey(id))
	if err != nil {
		if isNotFound(err) {
			observability.Store().OnMiss(ctx, store.BackendS3)
			return store.Record{}, store.NotFound(id)
		}
		return store.Record{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "get record %s", id)
	}
	observability.Store().OnHit(ctx, store.BackendS3)
	return store.Unmarshal(data)
}

func (s *Store) read(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchBucket"
}

func (s *Store) List(ctx context.Context, coordinate string, limit int) ([]store.Record, error) {
	if err := aterrors.ValidateCoordinate(coordinate); err != nil {
		return nil, err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	limit = store.Limit(limit)

	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	prefix := indexPrefix(coordinate)
	var ids []string
	for obj := range s.client.ListObjects(listCtx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, aterrors.Wrap(aterrors.ErrCodeStorage, obj.Err, "list records for %s", coordinate)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if _, id, ok := strings.Cut(name, "-"); ok {
			ids = append(ids, id)
		}
		if len(ids) == limit {
			break
		}
	}

	out := make([]store.Record, 0, len(ids))
	for _, id := range ids {
		data, err := s.read(ctx, recordKey(id))
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "get record %s", id)
		}
		rec, err := store.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close does nothing; the minio client holds no persistent connections
// that need releasing.
func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)

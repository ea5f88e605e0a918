// Package redis stores reports in Redis.
//
// Each record is a JSON string under "<prefix>report:<id>". A sorted set
// "<prefix>artifact:<coordinate>" scored by storage time indexes the
// records of one artifact.
package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/observability"
	"github.com/syslex/artitracker/pkg/report"
	"github.com/syslex/artitracker/pkg/store"
)

// DefaultPrefix namespaces all keys.
const DefaultPrefix = "artitracker:"

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// TTL expires records after the given duration. Zero keeps them.
	TTL time.Duration
}

// Store is a Redis-backed [store.Store].
type Store struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "connect to redis at %s", addr)
	}
	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client goredis.UniversalClient, cfg Config) *Store {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, ttl: cfg.TTL, now: time.Now}
}

func (s *Store) recordKey(id string) string { return s.prefix + "report:" + id }
func (s *Store) indexKey(coord string) string { return s.prefix + "artifact:" + coord }

func (s *Store) Save(ctx context.Context, r *report.Report) (store.Record, error) {
	rec, err := store.NewRecord(r, s.now())
	if err != nil {
		observability.Store().OnSave(ctx, store.BackendRedis, 0, err)
		return store.Record{}, err
	}
	data, err := store.Marshal(rec)
	if err != nil {
		observability.Store().OnSave(ctx, store.BackendRedis, 0, err)
		return store.Record{}, err
	}

	_, err = s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, s.recordKey(rec.ID), data, s.ttl)
		p.ZAdd(ctx, s.indexKey(rec.Coordinate), goredis.Z{
			Score:  float64(rec.StoredAt.UnixMilli()),
			Member: rec.ID,
		})
		return nil
	})
	if err != nil {
		err = aterrors.Wrap(aterrors.ErrCodeStorage, err, "save record %s", rec.ID)
		observability.Store().OnSave(ctx, store.BackendRedis, 0, err)
		return store.Record{}, err
	}
	observability.Store().OnSave(ctx, store.BackendRedis, len(data), nil)
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (store.Record, error) {
	if err := aterrors.ValidateReportID(id); err != nil {
		return store.Record{}, err
	}
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		observability.Store().OnMiss(ctx, store.BackendRedis)
		return store.Record{}, store.NotFound(id)
	}
	if err != nil {
		return store.Record{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "get record %s", id)
	}
	observability.Store().OnHit(ctx, store.BackendRedis)
	return store.Unmarshal(data)
}

func (s *Store) List(ctx context.Context, coordinate string, limit int) ([]store.Record, error) {
	if err := aterrors.ValidateCoordinate(coordinate); err != nil {
		return nil, err
	}
	limit = store.Limit(limit)

	ids, err := s.client.ZRevRange(ctx, s.indexKey(coordinate), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "list records for %s", coordinate)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "load records for %s", coordinate)
	}

	out := make([]store.Record, 0, len(values))
	var stale []any
	for i, v := range values {
		text, ok := v.(string)
		if !ok {
			// Expired record; drop it from the index.
			stale = append(stale, ids[i])
			continue
		}
		rec, err := store.Unmarshal([]byte(text))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if len(stale) > 0 {
		_ = s.client.ZRem(ctx, s.indexKey(coordinate), stale...).Err()
	}
	return out, nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ store.Store = (*Store)(nil)

// Package mongo stores reports in a MongoDB collection.
//
// Documents keep the record metadata as fields and the report as its
// canonical JSON encoding, so reports read back byte for byte.
package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	aterrors "github.com/syslex/artitracker/pkg/errors"
	"github.com/syslex/artitracker/pkg/observability"
	"github.com/syslex/artitracker/pkg/report"
	"github.com/syslex/artitracker/pkg/store"
)

// Defaults for Config.
const (
	DefaultDatabase   = "artitracker"
	DefaultCollection = "reports"
)

// Config configures the MongoDB connection.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// Store is a MongoDB-backed [store.Store].
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

type document struct {
	ID         string    `bson:"_id"`
	Coordinate string    `bson:"coordinate"`
	StoredAt   time.Time `bson:"storedAt"`
	Report     string    `bson:"report"`
}

// New connects to MongoDB and ensures the history index exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, aterrors.New(aterrors.ErrCodeInvalidInput, "mongo uri is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "ping mongo")
	}

	db := cfg.Database
	if db == "" {
		db = DefaultDatabase
	}
	name := cfg.Collection
	if name == "" {
		name = DefaultCollection
	}
	coll := client.Database(db).Collection(name)

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "coordinate", Value: 1}, {Key: "storedAt", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "create history index")
	}
	return &Store{client: client, coll: coll, now: time.Now}, nil
}

func (s *Store) Save(ctx context.Context, r *report.Report) (store.Record, error) {
	rec, err := store.NewRecord(r, s.now())
	if err != nil {
		observability.Store().OnSave(ctx, store.BackendMongo, 0, err)
		return store.Record{}, err
	}
	data, err := report.Marshal(r)
	if err != nil {
		err = aterrors.Wrap(aterrors.ErrCodeStorage, err, "encode report")
		observability.Store().OnSave(ctx, store.BackendMongo, 0, err)
		return store.Record{}, err
	}

	doc := document{ID: rec.ID, Coordinate: rec.Coordinate, StoredAt: rec.StoredAt, Report: string(data)}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		err = aterrors.Wrap(aterrors.ErrCodeStorage, err, "insert record %s", rec.ID)
		observability.Store().OnSave(ctx, store.BackendMongo, 0, err)
		return store.Record{}, err
	}
	observability.Store().OnSave(ctx, store.BackendMongo, len(data), nil)
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (store.Record, error) {
	if err := aterrors.ValidateReportID(id); err != nil {
		return store.Record{}, err
	}
	var doc document
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observability.Store().OnMiss(ctx, store.BackendMongo)
		return store.Record{}, store.NotFound(id)
	}
	if err != nil {
		return store.Record{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "find record %s", id)
	}
	observability.Store().OnHit(ctx, store.BackendMongo)
	return doc.record()
}

func (s *Store) List(ctx context.Context, coordinate string, limit int) ([]store.Record, error) {
	if err := aterrors.ValidateCoordinate(coordinate); err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "storedAt", Value: -1}}).
		SetLimit(int64(store.Limit(limit)))

	cur, err := s.coll.Find(ctx, bson.D{{Key: "coordinate", Value: coordinate}}, opts)
	if err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "list records for %s", coordinate)
	}
	defer cur.Close(ctx)

	var out []store.Record
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "decode record")
		}
		rec, err := doc.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, aterrors.Wrap(aterrors.ErrCodeStorage, err, "list records for %s", coordinate)
	}
	return out, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (d document) record() (store.Record, error) {
	r, err := report.Unmarshal([]byte(d.Report))
	if err != nil {
		return store.Record{}, aterrors.Wrap(aterrors.ErrCodeStorage, err, "decode record %s", d.ID)
	}
	return store.Record{ID: d.ID, Coordinate: d.Coordinate, StoredAt: d.StoredAt.UTC(), Report: r}, nil
}

var _ store.Store = (*Store)(nil)

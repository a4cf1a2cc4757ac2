package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/barscene/pkg/errors"
	"github.com/matzehuels/barscene/pkg/scene"
)

// MongoConfig locates the scene collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// Default database and collection names.
const (
	DefaultMongoDatabase   = "barscene"
	DefaultMongoCollection = "scenes"
)

// MongoStore keeps documents in a MongoDB collection, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoStore connects to cfg.URI, pings the server and ensures an index
// on updated_at. Close disconnects the client.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if err := errors.ValidateURL(cfg.URI, "mongodb", "mongodb+srv"); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "mongo uri")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	s := NewMongoStoreFromClient(client, cfg)
	s.owned = true
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient uses an existing client, which Close leaves
// connected.
func NewMongoStoreFromClient(client *mongo.Client, cfg MongoConfig) *MongoStore {
	db, coll := cfg.Database, cfg.Collection
	if db == "" {
		db = DefaultMongoDatabase
	}
	if coll == "" {
		coll = DefaultMongoCollection
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(coll)}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (scene.Document, error) {
	var d scene.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return scene.Document{}, notFound(id)
	}
	if err != nil {
		return scene.Document{}, errors.Wrap(errors.ErrCodeNetwork, err, "get scene %s", id)
	}
	return d, nil
}

func (s *MongoStore) Put(ctx context.Context, d scene.Document) (scene.Document, error) {
	d, err := prepare(d)
	if err != nil {
		return scene.Document{}, err
	}
	// Mongo keeps millisecond precision.
	d.CreatedAt = d.CreatedAt.Truncate(time.Millisecond)
	d.UpdatedAt = d.UpdatedAt.Truncate(time.Millisecond)

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d, options.Replace().SetUpsert(true))
	if err != nil {
		return scene.Document{}, errors.Wrap(errors.ErrCodeNetwork, err, "put scene %s", d.ID)
	}
	return d, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete scene %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

type mongoSummary struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	UpdatedAt time.Time `bson:"updated_at"`
	Dataset   struct {
		Series []struct {
			Name string `bson:"name"`
		} `bson:"series"`
	} `bson:"dataset"`
}

// List projects away everything but names and timestamps.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetProjection(bson.M{"name": 1, "updated_at": 1, "dataset.series.name": 1}).
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list scenes")
	}
	var rows []mongoSummary
	if err := cur.All(ctx, &rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list scenes")
	}

	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		sum := Summary{ID: r.ID, Name: r.Name, UpdatedAt: r.UpdatedAt.UTC(), Series: []string{}}
		for _, s := range r.Dataset.Series {
			sum.Series = append(sum.Series, s.Name)
		}
		out = append(out, sum)
	}
	return out, nil
}

// Close disconnects the client when the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

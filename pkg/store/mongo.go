package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
)

// MongoConfig configures a MongoDB-backed store.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // database name; "schemadraw" when empty
	Collection string // collection name; "diagrams" when empty
	Key        string // document _id; DefaultKey when empty
}

// mongoDocument is the stored shape: the serialized diagram plus a write
// timestamp, keyed by the fixed storage key.
type mongoDocument struct {
	ID        string    `bson:"_id"`
	Diagram   []byte    `bson:"diagram"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore persists the diagram as a single upserted document.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	key    string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb at %s", cfg.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb at %s", cfg.URI)
	}

	db := cfg.Database
	if db == "" {
		db = "schemadraw"
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "diagrams"
	}
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(db).Collection(coll),
		key:    key,
	}, nil
}

// Load retrieves the stored diagram.
func (s *MongoStore) Load(ctx context.Context) (diagram.Diagram, bool, error) {
	var doc mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return diagram.Diagram{}, false, nil
	}
	if err != nil {
		return diagram.Diagram{}, false, errors.Wrap(errors.ErrCodeStore, err, "find %s", s.key)
	}
	return decode(doc.Diagram)
}

// Save upserts the diagram document.
func (s *MongoStore) Save(ctx context.Context, d diagram.Diagram) error {
	data, err := encode(d)
	if err != nil {
		return err
	}
	doc := mongoDocument{ID: s.key, Diagram: data, UpdatedAt: time.Now().UTC()}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "upsert %s", s.key)
	}
	return nil
}

// Delete removes the diagram document.
func (s *MongoStore) Delete(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete %s", s.key)
	}
	return nil
}

// Close disconnects the Mongo client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

package tabs

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Defaults for [MongoConfig].
const (
	DefaultMongoDatabase   = "jsongraph"
	DefaultMongoCollection = "tabs"
	DefaultMongoDocument   = "default"
)

// MongoConfig locates the snapshot document.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	// DocumentID is the _id of the snapshot document, one per workspace.
	DocumentID string
}

// MongoStore keeps the snapshot as one MongoDB document.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	id     string
}

type mongoSnapshot struct {
	ID       string `bson:"_id"`
	Snapshot `bson:",inline"`
}

// NewMongoStore connects to MongoDB and checks the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.DocumentID == "" {
		cfg.DocumentID = DefaultMongoDocument
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		id:     cfg.DocumentID,
	}, nil
}

// Load implements [Store].
func (m *MongoStore) Load(ctx context.Context) (*Snapshot, error) {
	var doc mongoSnapshot
	err := m.coll.FindOne(ctx, bson.M{"_id": m.id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tabs %s: %w", m.id, err)
	}
	return &doc.Snapshot, nil
}

// Save implements [Store].
func (m *MongoStore) Save(ctx context.Context, snap Snapshot) error {
	doc := mongoSnapshot{ID: m.id, Snapshot: snap}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": m.id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace tabs %s: %w", m.id, err)
	}
	return nil
}

// Close implements [Store].
func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)

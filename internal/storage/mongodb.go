package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/postcraft/postcraft/internal/config"
)

const mongoCollection = "kv"

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoDBBackend implements Backend using a MongoDB collection
type MongoDBBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDBBackend connects to MongoDB and verifies the connection
func NewMongoDBBackend(ctx context.Context, cfg config.StorageConfig) (*MongoDBBackend, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoDBBackend{
		client:     client,
		collection: client.Database(cfg.MongoDatabase).Collection(mongoCollection),
	}, nil
}

// Load retrieves the value stored under key
func (m *MongoDBBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var doc mongoDoc
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", key, err)
	}
	return []byte(doc.Value), nil
}

// Save upserts the document for key
func (m *MongoDBBackend) Save(ctx context.Context, key string, value []byte) error {
	doc := mongoDoc{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}

	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Close disconnects the client
func (m *MongoDBBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

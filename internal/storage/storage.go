package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/postcraft/postcraft/internal/config"
)

// Slot names used by the client
const (
	KeySettings    = "user-settings"
	KeyPosts       = "posts"
	KeyCurrentPost = "current-post"
)

// ErrNotFound is returned by a Backend when nothing is stored under a key
var ErrNotFound = errors.New("key not found")

// Backend defines the contract for durable key-value storage of encoded values
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}

// NewBackend creates a new backend instance based on configuration
func NewBackend(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case config.StorageFile:
		return NewFileBackend(cfg.DataDir)
	case config.StorageMemory:
		return NewMemoryBackend(), nil
	case config.StorageDynamoDB:
		return NewDynamoDBBackend(cfg)
	case config.StorageMongoDB:
		return NewMongoDBBackend(ctx, cfg)
	case config.StoragePostgreSQL:
		return NewPostgreSQLBackend(ctx, cfg.PostgresURI)
	case config.StorageSQLite:
		return NewSQLiteBackend(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// Store persists JSON-encoded values through a Backend. Reads fall back to a
// caller default and writes never fail from the caller's point of view; the
// in-memory value stays authoritative for the session when the backend
// misbehaves.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// NewStore wraps a backend
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger}
}

// Read returns the value stored under key, or def when nothing is stored or
// the stored value cannot be loaded or decoded.
func Read[T any](ctx context.Context, s *Store, key string, def T) T {
	data, err := s.backend.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("failed to load stored value", zap.String("key", key), zap.Error(err))
		}
		return def
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Warn("failed to decode stored value", zap.String("key", key), zap.Error(err))
		return def
	}

	return value
}

// Write encodes value and stores it under key, replacing any prior value.
// Failures are logged and swallowed.
func (s *Store) Write(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode value", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.backend.Save(ctx, key, data); err != nil {
		s.logger.Warn("failed to store value", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the underlying backend
func (s *Store) Close() error {
	return s.backend.Close()
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/postcraft/postcraft/internal/models"
)

// Storage backend names
const (
	StorageFile       = "file"
	StorageMemory     = "memory"
	StorageDynamoDB   = "dynamodb"
	StorageMongoDB    = "mongodb"
	StoragePostgreSQL = "postgresql"
	StorageSQLite     = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Storage    StorageConfig
	Webhook    WebhookConfig
	Onboarding OnboardingConfig
	Telegram   TelegramConfig
	Log        LogConfig
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	Type          string // "file", "memory", "dynamodb", "mongodb", "postgresql", "sqlite"
	DataDir       string // For the file backend
	Region        string // For AWS DynamoDB
	TableName     string
	Endpoint      string // Custom endpoint for local testing
	MongoDBURI    string
	MongoDatabase string
	PostgresURI   string
	SQLitePath    string
}

// WebhookConfig holds outbound webhook client configuration
type WebhookConfig struct {
	Timeout time.Duration
}

// OnboardingConfig holds the webhook URLs written into new settings
type OnboardingConfig struct {
	GenerateWebhook string
	PublishWebhook  string
}

// TelegramConfig enables the Telegram post-publish notification
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Enabled reports whether both token and chat are configured
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != 0
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables with defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	dataDir := getEnv("DATA_DIR", defaultDataDir())

	chatID, err := parseChatID(os.Getenv("TELEGRAM_CHAT_ID"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Storage: StorageConfig{
			Type:          getEnv("STORAGE_TYPE", StorageFile),
			DataDir:       dataDir,
			Region:        getEnv("AWS_REGION", "us-west-2"),
			TableName:     getEnv("TABLE_NAME", "postcraft_state"),
			Endpoint:      getEnv("DYNAMODB_ENDPOINT", ""), // For local DynamoDB
			MongoDBURI:    getEnv("MONGODB_URI", ""),
			MongoDatabase: getEnv("MONGODB_DATABASE", "postcraft"),
			PostgresURI:   getEnv("POSTGRES_URI", ""),
			SQLitePath:    getEnv("SQLITE_PATH", filepath.Join(dataDir, "postcraft.db")),
		},
		Webhook: WebhookConfig{
			Timeout: getEnvDuration("WEBHOOK_TIMEOUT", 60*time.Second),
		},
		Onboarding: OnboardingConfig{
			GenerateWebhook: getEnv("DEFAULT_GENERATE_WEBHOOK", models.DefaultGenerateWebhook),
			PublishWebhook:  getEnv("DEFAULT_PUBLISH_WEBHOOK", models.DefaultPublishWebhook),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   chatID,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected storage backend has what it needs
func (c *Config) Validate() error {
	s := c.Storage
	switch s.Type {
	case StorageFile:
		if s.DataDir == "" {
			return errors.New("DATA_DIR is not set")
		}
	case StorageMemory:
	case StorageDynamoDB:
		if s.TableName == "" {
			return errors.New("TABLE_NAME is not set")
		}
	case StorageMongoDB:
		if s.MongoDBURI == "" {
			return errors.New("MONGODB_URI is not set")
		}
	case StoragePostgreSQL:
		if s.PostgresURI == "" {
			return errors.New("POSTGRES_URI is not set")
		}
	case StorageSQLite:
		if s.SQLitePath == "" {
			return errors.New("SQLITE_PATH is not set")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", s.Type)
	}

	if c.Webhook.Timeout < 0 {
		return errors.New("WEBHOOK_TIMEOUT cannot be negative")
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "postcraft")
	}
	return ".postcraft"
}

func parseChatID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}
	return id, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

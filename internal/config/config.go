package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const (
	BackendFile      = "file"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

type Config struct {
	Port                string
	StorageBackend      string
	DataFile            string
	GoogleCloudProject  string
	FirestoreCollection string
	DatabaseURI         string
	LineChannelToken    string
	LineChannelSecret   string
	LogLevel            string
	LogFormat           string
}

func Load() (*Config, error) {
	// .env file is optional
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		StorageBackend:      getEnvOrDefault("STORAGE_BACKEND", BackendFile),
		DataFile:            getEnvOrDefault("DATA_FILE", "todos.json"),
		GoogleCloudProject:  os.Getenv("GOOGLE_CLOUD_PROJECT"),
		FirestoreCollection: getEnvOrDefault("FIRESTORE_COLLECTION", "todos"),
		DatabaseURI:         os.Getenv("DATABASE_URI"),
		LineChannelToken:    os.Getenv("LINE_CHANNEL_TOKEN"),
		LineChannelSecret:   os.Getenv("LINE_CHANNEL_SECRET"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendFile:
		if c.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the file backend")
		}
	case BackendFirestore:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the firestore backend")
		}
	case BackendPostgres:
		if c.DatabaseURI == "" {
			return fmt.Errorf("DATABASE_URI is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if (c.LineChannelToken == "") != (c.LineChannelSecret == "") {
		return fmt.Errorf("LINE_CHANNEL_TOKEN and LINE_CHANNEL_SECRET must be set together")
	}
	return nil
}

// LineEnabled reports whether the LINE webhook should be served.
func (c *Config) LineEnabled() bool {
	return c.LineChannelToken != "" && c.LineChannelSecret != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

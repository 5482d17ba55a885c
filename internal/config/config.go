// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all runtime configuration for the jtrac server.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. Required.
	DatabaseURL string

	// HTTPAddr is the listen address for the HTTP API.
	HTTPAddr string

	// NATSURL is the NATS server URL for event publishing. Empty disables events.
	NATSURL string

	// AuthToken, when set, is required as a Bearer token on API requests.
	AuthToken string

	// ExportInterval is how often the background export runs. Zero disables it.
	ExportInterval time.Duration

	// ExportS3Bucket enables XML export to S3 when set.
	ExportS3Bucket   string
	ExportS3Endpoint string
	ExportS3Region   string
	ExportS3Key      string

	// ExportFile enables XML export to a local file when set.
	ExportFile string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("JTRAC_DATABASE_URL"),
		HTTPAddr:         envOrDefault("JTRAC_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("JTRAC_NATS_URL"),
		AuthToken:        os.Getenv("JTRAC_AUTH_TOKEN"),
		ExportS3Bucket:   os.Getenv("JTRAC_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("JTRAC_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("JTRAC_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("JTRAC_EXPORT_S3_KEY", "jtrac/backup.xml"),
		ExportFile:       os.Getenv("JTRAC_EXPORT_FILE"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("JTRAC_DATABASE_URL is required")
	}

	if v := os.Getenv("JTRAC_EXPORT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JTRAC_EXPORT_INTERVAL %q: %w", v, err)
		}
		cfg.ExportInterval = d
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

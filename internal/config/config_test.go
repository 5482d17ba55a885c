package config

import (
	"testing"
	"time"
)

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"JTRAC_DATABASE_URL",
		"JTRAC_HTTP_ADDR",
		"JTRAC_NATS_URL",
		"JTRAC_AUTH_TOKEN",
		"JTRAC_EXPORT_INTERVAL",
		"JTRAC_EXPORT_S3_BUCKET",
		"JTRAC_EXPORT_S3_ENDPOINT",
		"JTRAC_EXPORT_S3_REGION",
		"JTRAC_EXPORT_S3_KEY",
		"JTRAC_EXPORT_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearAllEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JTRAC_DATABASE_URL is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("JTRAC_DATABASE_URL", "postgres://localhost/jtrac")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.ExportInterval != 0 {
		t.Errorf("ExportInterval = %v, want 0", cfg.ExportInterval)
	}
	if cfg.ExportS3Region != "us-east-1" {
		t.Errorf("ExportS3Region = %q, want us-east-1", cfg.ExportS3Region)
	}
	if cfg.ExportS3Key != "jtrac/backup.xml" {
		t.Errorf("ExportS3Key = %q, want jtrac/backup.xml", cfg.ExportS3Key)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("JTRAC_DATABASE_URL", "postgres://db/jtrac")
	t.Setenv("JTRAC_HTTP_ADDR", ":9090")
	t.Setenv("JTRAC_NATS_URL", "nats://localhost:4222")
	t.Setenv("JTRAC_AUTH_TOKEN", "secret")
	t.Setenv("JTRAC_EXPORT_INTERVAL", "30m")
	t.Setenv("JTRAC_EXPORT_S3_BUCKET", "backups")
	t.Setenv("JTRAC_EXPORT_FILE", "/var/lib/jtrac/backup.xml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
	}
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
	if cfg.AuthToken != "secret" {
		t.Errorf("AuthToken = %q", cfg.AuthToken)
	}
	if cfg.ExportInterval != 30*time.Minute {
		t.Errorf("ExportInterval = %v, want 30m", cfg.ExportInterval)
	}
	if cfg.ExportS3Bucket != "backups" {
		t.Errorf("ExportS3Bucket = %q", cfg.ExportS3Bucket)
	}
	if cfg.ExportFile != "/var/lib/jtrac/backup.xml" {
		t.Errorf("ExportFile = %q", cfg.ExportFile)
	}
}

func TestLoadBadInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("JTRAC_DATABASE_URL", "postgres://db/jtrac")
	t.Setenv("JTRAC_EXPORT_INTERVAL", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid interval")
	}
}

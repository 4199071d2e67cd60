package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
mongo:
  database: matching_test
matching:
  match_threshold: 4
  free_match_quota: 10
  cooldown_duration: 12h
  passes_per_minute: 2
reconcile:
  interval: 30m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Mongo.Database != "matching_test" {
		t.Fatalf("unexpected mongo database: %s", cfg.Mongo.Database)
	}
	if cfg.Matching.MatchThreshold != 4 {
		t.Fatalf("unexpected match threshold: %d", cfg.Matching.MatchThreshold)
	}
	if cfg.Matching.FreeMatchQuota != 10 {
		t.Fatalf("unexpected free match quota: %d", cfg.Matching.FreeMatchQuota)
	}
	if cfg.Matching.CooldownDuration != 12*time.Hour {
		t.Fatalf("unexpected cooldown duration: %s", cfg.Matching.CooldownDuration)
	}
	if cfg.Matching.PassesPerMinute != 2 {
		t.Fatalf("unexpected passes/minute: %d", cfg.Matching.PassesPerMinute)
	}
	if cfg.Reconcile.Interval != 30*time.Minute {
		t.Fatalf("unexpected reconcile interval: %s", cfg.Reconcile.Interval)
	}

	// untouched keys keep their defaults
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Fatalf("mongo uri default should survive partial yaml: %s", cfg.Mongo.URI)
	}
	if cfg.Matching.ScanBatchSize != 10 {
		t.Fatalf("scan batch size default should stay 10, got %d", cfg.Matching.ScanBatchSize)
	}
	if cfg.Matching.PropagationChunkSize != 100 {
		t.Fatalf("propagation chunk size default should stay 100, got %d", cfg.Matching.PropagationChunkSize)
	}
	if !cfg.Reconcile.Enabled {
		t.Fatalf("reconcile should default to enabled")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Matching.MatchThreshold != 3 {
		t.Fatalf("unexpected default match threshold: %d", cfg.Matching.MatchThreshold)
	}
	if cfg.Matching.FreeMatchQuota != 5 {
		t.Fatalf("unexpected default free match quota: %d", cfg.Matching.FreeMatchQuota)
	}
	if cfg.Matching.CooldownDuration != 24*time.Hour {
		t.Fatalf("unexpected default cooldown duration: %s", cfg.Matching.CooldownDuration)
	}
	if cfg.S3.PresignedTTL != 15*time.Minute {
		t.Fatalf("unexpected default presigned ttl: %s", cfg.S3.PresignedTTL)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
}

func TestLoadEnvOverridesWin(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MATCH_THRESHOLD", "7")
	t.Setenv("COOLDOWN_DURATION", "6h")
	t.Setenv("MONGO_URI", "mongodb://db:27017")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Matching.MatchThreshold != 7 {
		t.Fatalf("env threshold override lost: %d", cfg.Matching.MatchThreshold)
	}
	if cfg.Matching.CooldownDuration != 6*time.Hour {
		t.Fatalf("env cooldown override lost: %s", cfg.Matching.CooldownDuration)
	}
	if cfg.Mongo.URI != "mongodb://db:27017" {
		t.Fatalf("env mongo uri override lost: %s", cfg.Mongo.URI)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"MONGO_URI",
		"MONGO_DATABASE",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_REGION",
		"S3_USE_SSL",
		"S3_PRESIGNED_TTL",
		"CHAT_BASE_URL",
		"CHAT_TIMEOUT",
		"BOT_TOKEN",
		"MATCH_THRESHOLD",
		"FREE_MATCH_QUOTA",
		"COOLDOWN_DURATION",
		"SCAN_BATCH_SIZE",
		"PROPAGATION_CHUNK_SIZE",
		"PASSES_PER_MINUTE",
		"PASSES_PER_HOUR",
		"RECONCILE_ENABLED",
		"RECONCILE_INTERVAL",
		"RECONCILE_LOOKBACK",
	} {
		t.Setenv(key, "")
	}
}

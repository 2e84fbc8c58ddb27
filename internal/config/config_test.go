package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"RESPONSE_MASKED_FIELDS", "MASK_CHAR", "MASK_GRPC_PORT", "MASK_API_SECRET_KEY", "MASK_REDIS_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.MaskedFields != "" {
		t.Errorf("MaskedFields = %q, want empty", cfg.MaskedFields)
	}
	if cfg.MaskChar != "*" {
		t.Errorf("MaskChar = %q, want *", cfg.MaskChar)
	}
	if cfg.GRPCPort != DefaultGRPCPort {
		t.Errorf("GRPCPort = %d, want %d", cfg.GRPCPort, DefaultGRPCPort)
	}
	if cfg.RedisFieldsKey != DefaultRedisFieldsKey {
		t.Errorf("RedisFieldsKey = %q, want %q", cfg.RedisFieldsKey, DefaultRedisFieldsKey)
	}
	if cfg.AuthEnabled() {
		t.Errorf("AuthEnabled() = true without a secret")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RESPONSE_MASKED_FIELDS", "password,ssn")
	t.Setenv("MASK_CHAR", "#")
	t.Setenv("MASK_HTTP_PORT", "18080")
	t.Setenv("MASK_METRICS_PORT", "not-a-number")
	t.Setenv("MASK_API_SECRET_KEY", "s3cret")

	cfg := Load()

	if cfg.MaskedFields != "password,ssn" {
		t.Errorf("MaskedFields = %q", cfg.MaskedFields)
	}
	if cfg.MaskChar != "#" {
		t.Errorf("MaskChar = %q", cfg.MaskChar)
	}
	if cfg.HTTPPort != 18080 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.MetricsPort != DefaultMetricsPort {
		t.Errorf("MetricsPort = %d, want fallback %d", cfg.MetricsPort, DefaultMetricsPort)
	}
	if !cfg.AuthEnabled() {
		t.Errorf("AuthEnabled() = false with a secret")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RESPONSE_MASKED_FIELDS=token\nMASK_CHAR=X\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("RESPONSE_MASKED_FIELDS", "")
	os.Unsetenv("RESPONSE_MASKED_FIELDS")
	t.Setenv("MASK_CHAR", "#")

	loaded, err := LoadEnvFile(path)
	if err != nil {
		t.Fatalf("LoadEnvFile error: %v", err)
	}
	if !loaded {
		t.Fatalf("expected file to be loaded")
	}

	cfg := Load()
	if cfg.MaskedFields != "token" {
		t.Errorf("MaskedFields = %q, want token", cfg.MaskedFields)
	}
	// already-set variables are not overridden
	if cfg.MaskChar != "#" {
		t.Errorf("MaskChar = %q, want #", cfg.MaskChar)
	}
	os.Unsetenv("RESPONSE_MASKED_FIELDS")
}

func TestLoadEnvFileMissing(t *testing.T) {
	loaded, err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if loaded {
		t.Fatalf("expected loaded=false for missing file")
	}
}

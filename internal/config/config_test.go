package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.API.Port)
	}
	if cfg.Pipeline.BatchConcurrency != 4 {
		t.Errorf("expected default batch concurrency 4, got %d", cfg.Pipeline.BatchConcurrency)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
api:
  port: 9999
providers:
  fmp_key: file-key
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("expected port 9999 from file, got %d", cfg.API.Port)
	}
	if cfg.Providers.FMPKey != "file-key" {
		t.Errorf("expected fmp key from file, got %q", cfg.Providers.FMPKey)
	}
	// Defaults still fill unspecified sections.
	if cfg.Pipeline.BatchLimit != 25 {
		t.Errorf("expected default batch limit, got %d", cfg.Pipeline.BatchLimit)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestKeyFallbackFromEnv(t *testing.T) {
	t.Setenv("FMP_API_KEY", "env-key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Providers.FMPKey != "env-key" {
		t.Errorf("expected FMP key from conventional env var, got %q", cfg.Providers.FMPKey)
	}
}

func TestCheckAPIKeys(t *testing.T) {
	cfg := &Config{}
	cfg.Providers.FMPKey = "abcdefghijkl"

	statuses := CheckAPIKeys(cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 key statuses, got %d", len(statuses))
	}
	if !statuses[0].IsSet || statuses[0].Masked != "abc...jkl" {
		t.Errorf("unexpected FMP status: %+v", statuses[0])
	}
	if statuses[1].IsSet || statuses[1].Source != KeySourceNone {
		t.Errorf("unset FRED key should report none: %+v", statuses[1])
	}
}

func TestMaskKeyShort(t *testing.T) {
	if got := maskKey("short"); got != "***" {
		t.Errorf("short keys must be fully masked, got %q", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Database.Path != "dna_samples.db" {
		t.Fatalf("database path = %q", cfg.Database.Path)
	}
	if cfg.Server.Addr != "127.0.0.1:5003" {
		t.Fatalf("server addr = %q", cfg.Server.Addr)
	}
	if cfg.Import.BatchSize != 500 || cfg.Import.MaxErrors != 50 {
		t.Fatalf("import bounds = %d/%d", cfg.Import.BatchSize, cfg.Import.MaxErrors)
	}
	if cfg.Export.RowLimit != 50000 {
		t.Fatalf("export row limit = %d", cfg.Export.RowLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Fatalf("logging defaults = %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `database:
  path: /tmp/inventory.db
  debug: true
logging:
  level: debug
import:
  batch_size: 100
export:
  rate_limit:
    strategy: fixed_window
    requests_per_sec: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/inventory.db" || !cfg.Database.Debug {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level = %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("missing format should default: %q", cfg.Logging.Format)
	}
	if cfg.Import.BatchSize != 100 {
		t.Fatalf("batch size = %d", cfg.Import.BatchSize)
	}
	if cfg.Import.MaxErrors != 50 {
		t.Fatalf("missing max errors should default: %d", cfg.Import.MaxErrors)
	}
	if cfg.Export.RowLimit != 50000 {
		t.Fatalf("missing row limit should default: %d", cfg.Export.RowLimit)
	}
	if cfg.Export.RateLimit.Strategy != "fixed_window" || cfg.Export.RateLimit.RequestsPerSec != 5 {
		t.Fatalf("rate limit = %+v", cfg.Export.RateLimit)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database: [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

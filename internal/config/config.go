package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ghfc/dnastock/internal/ratelimit"
)

// Config holds the full application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Import   ImportConfig   `yaml:"import"`
	Export   ExportConfig   `yaml:"export"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path  string `yaml:"path"`
	Debug bool   `yaml:"debug"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig selects zap level and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ImportConfig bounds legacy import runs.
type ImportConfig struct {
	BatchSize int `yaml:"batch_size"`
	MaxErrors int `yaml:"max_errors"`
}

// ExportConfig bounds bulk exports. RateLimit guards the export endpoint,
// which walks up to RowLimit denormalized rows per request.
type ExportConfig struct {
	RowLimit  int              `yaml:"row_limit"`
	RateLimit ratelimit.Config `yaml:"rate_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: "dna_samples.db"},
		Server:   ServerConfig{Addr: "127.0.0.1:5003"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Import:   ImportConfig{BatchSize: 500, MaxErrors: 50},
		Export: ExportConfig{
			RowLimit:  50000,
			RateLimit: ratelimit.DefaultConfig(),
		},
	}
}

// Load reads a YAML config file and fills in defaults for missing fields.
// A missing file is not an error: defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return applyDefaults(cfg), nil
}

func applyDefaults(cfg Config) Config {
	def := Default()
	if cfg.Database.Path == "" {
		cfg.Database.Path = def.Database.Path
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
	if cfg.Import.BatchSize <= 0 {
		cfg.Import.BatchSize = def.Import.BatchSize
	}
	if cfg.Import.MaxErrors <= 0 {
		cfg.Import.MaxErrors = def.Import.MaxErrors
	}
	if cfg.Export.RowLimit <= 0 {
		cfg.Export.RowLimit = def.Export.RowLimit
	}
	return cfg
}

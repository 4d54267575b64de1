// Package config provides configuration loading and structs for the memefeed server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Recommend RecommendConfig `yaml:"recommend"`
	Search    SearchConfig    `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	// FeedbackRateLimit is the number of feedback requests allowed per IP per minute. Negative disables it.
	FeedbackRateLimit int `yaml:"feedback_rate_limit"`
}

// Data source kinds.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// DataConfig says where the precomputed embeddings and identifiers live.
type DataConfig struct {
	Source          string `yaml:"source"`
	EmbeddingsPath  string `yaml:"embeddings_path"`
	IdentifiersPath string `yaml:"identifiers_path"`
	DatabasePath    string `yaml:"database_path"`
	// ImageRoot is the directory relative identifiers are resolved against when serving
	// images. Empty means the directory holding the identifiers file.
	ImageRoot string `yaml:"image_root"`
	// Watch reloads the store when the data files change.
	Watch bool `yaml:"watch"`
}

// ResolveImage returns the file path for an item identifier.
func (d *DataConfig) ResolveImage(identifier string) string {
	if filepath.IsAbs(identifier) {
		return identifier
	}
	root := d.ImageRoot
	if root == "" {
		root = filepath.Dir(d.IdentifiersPath)
	}
	return filepath.Join(root, filepath.FromSlash(identifier))
}

// Paths returns the files backing the configured source.
func (d *DataConfig) Paths() []string {
	if d.Source == SourceSQLite {
		return []string{d.DatabasePath}
	}
	return []string{d.EmbeddingsPath, d.IdentifiersPath}
}

// RecommendConfig holds recommendation defaults. The count is always caller supplied;
// DefaultCount only applies when a request omits it.
type RecommendConfig struct {
	DefaultCount        int  `yaml:"default_count"`
	MaxCount            int  `yaml:"max_count"`
	NormalizePreference bool `yaml:"normalize_preference"`
}

// SearchConfig holds identifier keyword search settings.
type SearchConfig struct {
	Enabled *bool `yaml:"enabled"`
	// IndexPath is the Bleve index directory; empty keeps the index in memory.
	IndexPath    string `yaml:"index_path"`
	DefaultLimit int    `yaml:"default_limit"`
}

// EnabledOrDefault returns whether keyword search is enabled; defaults to true when unset.
func (s *SearchConfig) EnabledOrDefault() bool {
	if s.Enabled != nil {
		return *s.Enabled
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Data.EmbeddingsPath = expandPath(cfg.Data.EmbeddingsPath, configDir)
	cfg.Data.IdentifiersPath = expandPath(cfg.Data.IdentifiersPath, configDir)
	cfg.Data.DatabasePath = expandPath(cfg.Data.DatabasePath, configDir)
	if cfg.Data.ImageRoot != "" {
		cfg.Data.ImageRoot = expandPath(cfg.Data.ImageRoot, configDir)
	}
	if cfg.Search.IndexPath != "" {
		cfg.Search.IndexPath = expandPath(cfg.Search.IndexPath, configDir)
	}

	return &cfg, nil
}

// Validate checks values that ApplyDefaults cannot fix.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceCSV, SourceSQLite:
	default:
		return fmt.Errorf("unknown data source %q (supported: csv, sqlite)", c.Data.Source)
	}
	if c.Recommend.DefaultCount > c.Recommend.MaxCount {
		return fmt.Errorf("recommend.default_count (%d) exceeds recommend.max_count (%d)",
			c.Recommend.DefaultCount, c.Recommend.MaxCount)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

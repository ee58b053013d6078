// Package config provides configuration loading and structs for the
// search server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/filter"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/lexical"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Ranking   ranking.Weights `yaml:"ranking"`
	Lexical   lexical.Params  `yaml:"lexical"`
	Filter    filter.Config   `yaml:"filter"`
	Cache     CacheConfig     `yaml:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the inverted index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// EmbeddingConfig holds the embedding service settings.
type EmbeddingConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Dimensions int    `yaml:"dimensions"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// Timeout returns the request timeout as a duration.
func (e EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutMs) * time.Millisecond
}

// SearchConfig holds pipeline tunables.
type SearchConfig struct {
	CandidateLimit    int     `yaml:"candidate_limit"`
	StrategyTimeoutMs int     `yaml:"strategy_timeout_ms"`
	OverallTimeoutMs  int     `yaml:"overall_timeout_ms"`
	RRFK              int     `yaml:"rrf_k"`
	TitleBoost        float64 `yaml:"title_boost"`
}

// StrategyTimeout returns the per-strategy deadline as a duration.
func (s SearchConfig) StrategyTimeout() time.Duration {
	return time.Duration(s.StrategyTimeoutMs) * time.Millisecond
}

// OverallTimeout returns the request deadline as a duration.
func (s SearchConfig) OverallTimeout() time.Duration {
	return time.Duration(s.OverallTimeoutMs) * time.Millisecond
}

// CacheConfig holds the result cache settings.
type CacheConfig struct {
	Capacity   int `yaml:"capacity"`
	TTLSeconds int `yaml:"ttl_seconds"`
}

// TTL returns the entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Load reads and parses the config file at path, expands paths, and
// applies defaults.
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

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)

	return &cfg, nil
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

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
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

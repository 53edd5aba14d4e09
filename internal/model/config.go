package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	LLM         LLMConfig         `yaml:"llm"`
	Output      OutputConfig      `yaml:"output"`
}

// StoreConfig configures the document store.
type StoreConfig struct {
	// Path to the sqlite database file. Empty means in-memory store.
	Path string `yaml:"path"`
}

// ChunkingConfig configures document chunking at ingestion.
type ChunkingConfig struct {
	Size    int `yaml:"size"`    // Target chunk size in characters
	Overlap int `yaml:"overlap"` // Overlap between adjacent chunks
}

// RetrievalConfig configures evidence retrieval.
type RetrievalConfig struct {
	PerQueryK   int `yaml:"per_query_k"`  // Top-K per aggregator query
	MaxEvidence int `yaml:"max_evidence"` // Overall cap on merged evidence
}

// CacheConfig configures the layered candidate cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig configures worker counts for batch operations.
type ConcurrencyConfig struct {
	IngestWorkers int `yaml:"ingest_workers"`
}

// LLMConfig configures the optional drafting provider.
type LLMConfig struct {
	Provider       string  `yaml:"provider"` // "openai", "anthropic", "ollama", "" (disabled)
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"api_key,omitempty"`
	BaseURL        string  `yaml:"base_url,omitempty"`
	Timeout        int     `yaml:"timeout"` // seconds
	MaxTokens      int     `yaml:"max_tokens"`
	StrictEvidence bool    `yaml:"strict_evidence"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	HTTPProxy      string  `yaml:"http_proxy,omitempty"`
	HTTPSProxy     string  `yaml:"https_proxy,omitempty"`
}

// OutputConfig configures rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".appealsmith")

	return &Config{
		Store: StoreConfig{
			Path: filepath.Join(base, "appealsmith.db"),
		},
		Chunking: ChunkingConfig{
			Size:    1200,
			Overlap: 200,
		},
		Retrieval: RetrievalConfig{
			PerQueryK:   5,
			MaxEvidence: 15,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			IngestWorkers: 4,
		},
		LLM: LLMConfig{
			Provider:       "", // Disabled by default
			Timeout:        30,
			MaxTokens:      1200,
			StrictEvidence: true, // Always enforce
			RequestsPerSec: 1,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pkarels/appealsmith/internal/cache"
	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/store"
)

// loadConfig builds the effective configuration: defaults, overridden by the
// config file and APPEALSMITH_* environment variables where set.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if viper.IsSet("store.path") {
		cfg.Store.Path = viper.GetString("store.path")
	}
	if viper.IsSet("chunking.size") {
		cfg.Chunking.Size = viper.GetInt("chunking.size")
	}
	if viper.IsSet("chunking.overlap") {
		cfg.Chunking.Overlap = viper.GetInt("chunking.overlap")
	}
	if viper.IsSet("retrieval.per_query_k") {
		cfg.Retrieval.PerQueryK = viper.GetInt("retrieval.per_query_k")
	}
	if viper.IsSet("retrieval.max_evidence") {
		cfg.Retrieval.MaxEvidence = viper.GetInt("retrieval.max_evidence")
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("concurrency.ingest_workers") {
		cfg.Concurrency.IngestWorkers = viper.GetInt("concurrency.ingest_workers")
	}
	if viper.IsSet("llm.provider") {
		cfg.LLM.Provider = viper.GetString("llm.provider")
	}
	if viper.IsSet("llm.model") {
		cfg.LLM.Model = viper.GetString("llm.model")
	}
	if viper.IsSet("llm.requests_per_sec") {
		cfg.LLM.RequestsPerSec = viper.GetFloat64("llm.requests_per_sec")
	}
	cfg.Output.Verbose = viper.GetBool("output.verbose")

	return cfg
}

// openStore opens the configured document store, wrapped in the layered
// cache when caching is enabled.
func openStore(cfg *model.Config) (store.Store, error) {
	var st store.Store
	if cfg.Store.Path == "" {
		st = store.NewMemoryStore()
	} else {
		var err error
		st, err = store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
		}
	}

	if cfg.Cache.Enabled {
		layered := cache.NewLayered(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		st = store.NewCachedStore(st, layered)
	}
	return st, nil
}

package config

import (
	"testing"
	"time"
)

func TestLoadIncludesSearchDefaults(t *testing.T) {
	t.Setenv("SEARCH_DEFAULT_LIMIT", "")
	t.Setenv("STRATEGY_TIMEOUT_MS", "")
	t.Setenv("SEMANTIC_TAIL_CAP", "")
	t.Setenv("MAX_QUERY_EXPANSIONS", "")
	t.Setenv("RERANK_TOP_N", "")

	cfg := Load()
	if cfg.SearchDefaultLimit != 20 {
		t.Fatalf("expected default limit 20, got %d", cfg.SearchDefaultLimit)
	}
	if cfg.StrategyTimeout() != 1500*time.Millisecond {
		t.Fatalf("expected default strategy timeout 1.5s, got %s", cfg.StrategyTimeout())
	}
	if cfg.SemanticTailCap != 5 {
		t.Fatalf("expected default semantic tail cap 5, got %d", cfg.SemanticTailCap)
	}
	if cfg.MaxQueryExpansions != 2 {
		t.Fatalf("expected default expansions 2, got %d", cfg.MaxQueryExpansions)
	}
	if cfg.RerankTopN != 10 {
		t.Fatalf("expected default rerank top n 10, got %d", cfg.RerankTopN)
	}
}

func TestLoadParsesSearchOverrides(t *testing.T) {
	t.Setenv("SEARCH_DEFAULT_LIMIT", "40")
	t.Setenv("STRATEGY_TIMEOUT_MS", "800")
	t.Setenv("CACHE_VERSION", "3")
	t.Setenv("EXPANSION_TTL_HOURS", "24")

	cfg := Load()
	if cfg.SearchDefaultLimit != 40 {
		t.Fatalf("expected limit 40, got %d", cfg.SearchDefaultLimit)
	}
	if cfg.StrategyTimeout() != 800*time.Millisecond {
		t.Fatalf("expected strategy timeout 800ms, got %s", cfg.StrategyTimeout())
	}
	if cfg.CacheVersion != 3 {
		t.Fatalf("expected cache version 3, got %d", cfg.CacheVersion)
	}
	if cfg.ExpansionTTL() != 24*time.Hour {
		t.Fatalf("expected expansion ttl 24h, got %s", cfg.ExpansionTTL())
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("RETRIEVAL_POOL_SIZE", "not-a-number")

	cfg := Load()
	if cfg.RetrievalPoolSize != 32 {
		t.Fatalf("expected fallback pool size 32, got %d", cfg.RetrievalPoolSize)
	}
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kitaplik/reading-assistant/internal/core/cachekeys"
	"github.com/kitaplik/reading-assistant/internal/core/domain"
	"github.com/kitaplik/reading-assistant/internal/core/ports"
	"github.com/kitaplik/reading-assistant/internal/core/textnorm"
)

// QueryExpander generates alternative phrasings of a query via the LLM
// provider. Expansion is pure enrichment: every internal failure degrades
// to an empty list, never to an error.
type QueryExpander struct {
	provider ports.CompletionProvider
	cache    ports.ResultCache
	version  int
	ttl      time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// ExpanderOptions tunes the query expander.
type ExpanderOptions struct {
	Version int
	TTL     time.Duration
	Timeout time.Duration
}

func NewQueryExpander(provider ports.CompletionProvider, cache ports.ResultCache, opts ExpanderOptions, logger *slog.Logger) *QueryExpander {
	if opts.Version <= 0 {
		opts.Version = 1
	}
	if opts.TTL <= 0 {
		// Variations depend on the query text only, not on any scope, so
		// entries can live long.
		opts.TTL = 7 * 24 * time.Hour
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 6 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryExpander{
		provider: provider,
		cache:    cache,
		version:  opts.Version,
		ttl:      opts.TTL,
		timeout:  opts.Timeout,
		logger:   logger,
	}
}

// Expand returns up to maxVariations alternative phrasings of query.
func (e *QueryExpander) Expand(ctx context.Context, query string, maxVariations int) []string {
	if e == nil || e.provider == nil || maxVariations <= 0 {
		return nil
	}

	key := cachekeys.ExpansionKey(e.version, query, maxVariations)
	if e.cache != nil {
		if raw, ok := e.cache.Get(ctx, key); ok {
			var cached []string
			if err := json.Unmarshal(raw, &cached); err == nil {
				return truncateVariations(cached, maxVariations)
			}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.provider.Complete(callCtx, buildExpansionPrompt(query, maxVariations))
	if err != nil {
		e.logger.Warn("query_expansion_failed", "error", err)
		return nil
	}

	variations, err := parseExpansionResponse(raw, query)
	if err != nil {
		e.logger.Warn("query_expansion_unparsable", "error", err)
		return nil
	}
	variations = truncateVariations(variations, maxVariations)

	if e.cache != nil && len(variations) > 0 {
		if encoded, err := json.Marshal(variations); err == nil {
			e.cache.Set(ctx, key, encoded, e.ttl)
		}
	}
	return variations
}

func buildExpansionPrompt(query string, maxVariations int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite the search query below into at most %d alternative phrasings ", maxVariations)
	b.WriteString("preserving its meaning. Respond with a JSON array of strings and nothing else.\n\n")
	fmt.Fprintf(&b, "Query: %q\n", query)
	return b.String()
}

// parseExpansionResponse tolerates surrounding prose and code fencing: it
// extracts the outermost JSON array before unmarshaling.
func parseExpansionResponse(raw, original string) ([]string, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, domain.WrapError(domain.ErrMalformedResponse, "expand query", fmt.Errorf("no JSON array in response"))
	}

	var parsed []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, domain.WrapError(domain.ErrMalformedResponse, "expand query", err)
	}

	normalizedOriginal := textnorm.NormalizeText(original)
	seen := make(map[string]struct{}, len(parsed))
	out := make([]string, 0, len(parsed))
	for _, variation := range parsed {
		variation = strings.TrimSpace(variation)
		if variation == "" {
			continue
		}
		normalized := textnorm.NormalizeText(variation)
		if normalized == normalizedOriginal {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, variation)
	}
	return out, nil
}

func truncateVariations(variations []string, maxVariations int) []string {
	if len(variations) > maxVariations {
		return variations[:maxVariations]
	}
	return variations
}

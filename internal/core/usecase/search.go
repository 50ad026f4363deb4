package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/kitaplik/reading-assistant/internal/core/cachekeys"
	"github.com/kitaplik/reading-assistant/internal/core/domain"
	"github.com/kitaplik/reading-assistant/internal/core/ports"
	"github.com/kitaplik/reading-assistant/internal/core/textnorm"
)

// SearchObserver receives orchestration measurements. Implementations must
// tolerate being called from multiple goroutines.
type SearchObserver interface {
	ObserveSearch(mode domain.RetrievalMode, policy string, cacheHit bool, duration time.Duration)
	ObserveStage(stage string, duration time.Duration)
	ObserveBucket(bucket domain.Bucket, size int)
	StrategyFailure(bucket domain.Bucket)
}

// SearchConfig tunes the orchestrator.
type SearchConfig struct {
	CacheVersion    int
	CacheTTL        time.Duration
	StrategyTimeout time.Duration
	DefaultLimit    int
	MaxExpansions   int
	SemanticTailCap int
	RerankTopN      int
	Markers         *MarkerSet
}

func (c SearchConfig) normalize() SearchConfig {
	out := c
	if out.CacheVersion <= 0 {
		out.CacheVersion = 1
	}
	if out.CacheTTL <= 0 {
		out.CacheTTL = 10 * time.Minute
	}
	if out.StrategyTimeout <= 0 {
		out.StrategyTimeout = 3 * time.Second
	}
	if out.DefaultLimit <= 0 {
		out.DefaultLimit = 20
	}
	if out.MaxExpansions < 0 {
		out.MaxExpansions = 0
	}
	if out.SemanticTailCap < 0 {
		out.SemanticTailCap = 0
	}
	if out.RerankTopN <= 0 {
		out.RerankTopN = 10
	}
	if out.Markers == nil {
		markers := DefaultMarkers()
		out.Markers = &markers
	}
	return out
}

// SearchUseCase composes routing, optional expansion, concurrent strategy
// fan-out, fusion, capping, dedup, caching and optional reranking.
type SearchUseCase struct {
	strategies map[domain.Bucket]ports.RetrievalStrategy
	cache      ports.ResultCache
	expander   *QueryExpander
	reranker   *Reranker
	pool       *ants.Pool
	observer   SearchObserver
	cfg        SearchConfig
	logger     *slog.Logger
}

func NewSearchUseCase(
	strategies []ports.RetrievalStrategy,
	cache ports.ResultCache,
	expander *QueryExpander,
	reranker *Reranker,
	pool *ants.Pool,
	observer SearchObserver,
	cfg SearchConfig,
	logger *slog.Logger,
) *SearchUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	byBucket := make(map[domain.Bucket]ports.RetrievalStrategy, len(strategies))
	for _, strategy := range strategies {
		byBucket[strategy.Bucket()] = strategy
	}
	return &SearchUseCase{
		strategies: byBucket,
		cache:      cache,
		expander:   expander,
		reranker:   reranker,
		pool:       pool,
		observer:   observer,
		cfg:        cfg.normalize(),
		logger:     logger,
	}
}

// Plan exposes the pure query plan builder on the service surface.
func (uc *SearchUseCase) Plan(req domain.PlanRequest) domain.QueryPlan {
	return BuildQueryPlan(req, *uc.cfg.Markers)
}

// Search runs the full pipeline:
// ROUTE -> EXPAND? -> FAN_OUT -> FUSE -> CAP -> DEDUPE -> CACHE_WRITE -> RERANK? -> RETURN.
func (uc *SearchUseCase) Search(ctx context.Context, req domain.SearchRequest) (*domain.ResultSet, error) {
	started := time.Now()

	if strings.TrimSpace(req.Query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("empty query"))
	}
	if strings.TrimSpace(req.Scope.UserID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search", fmt.Errorf("missing user id"))
	}
	if req.Limit <= 0 {
		req.Limit = uc.cfg.DefaultLimit
	}
	if req.MixPolicy == "" {
		req.MixPolicy = domain.MixLexicalThenSemanticTail
	}
	if req.SemanticTailCap <= 0 {
		req.SemanticTailCap = uc.cfg.SemanticTailCap
	}

	q := uc.buildQuery(req)
	stageMillis := make(map[string]int64, 6)

	key := cachekeys.SearchKey(uc.cfg.CacheVersion, q, req, uc.strategySet())
	if cached := uc.readCache(ctx, key, stageMillis); cached != nil {
		cached.Metadata.CacheHit = true
		cached.Metadata.StageMillis = stageMillis
		uc.finish(ctx, req, q, cached, started)
		return cached, nil
	}

	decision := RouteQuery(q, req.DefaultMode, *uc.cfg.Markers)

	expansions := uc.expandQuery(ctx, q, decision, stageMillis)

	buckets, strategyErrors := uc.fanOut(ctx, q, decision, expansions, req.Limit, req.Offset, stageMillis)

	if uc.allBucketsFailed(decision, buckets, strategyErrors) {
		return nil, domain.WrapError(domain.ErrTotalFailure, "search", fmt.Errorf("no strategy produced results for query"))
	}

	fuseStart := time.Now()
	fused, tailPolicy, effectiveCap := fuseBuckets(buckets, decision.Buckets, req.MixPolicy, q.TokenCount(), req.SemanticTailCap)
	fused = dedupeCandidates(fused)
	fused = trimCandidates(fused, req.Limit)
	stageMillis["fuse"] = time.Since(fuseStart).Milliseconds()

	result := &domain.ResultSet{
		Candidates: fused,
		Metadata: domain.SearchMetadata{
			SearchID:       uuid.NewString(),
			Route:          decision,
			BucketSizes:    bucketSizes(buckets),
			StrategyErrors: strategyErrors,
			Expansions:     expansions,
			MixPolicy:      req.MixPolicy,
			TailPolicy:     tailPolicy,
			EffectiveCap:   effectiveCap,
			StageMillis:    stageMillis,
		},
	}

	uc.writeCache(ctx, key, result, stageMillis)
	uc.finish(ctx, req, q, result, started)
	return result, nil
}

func (uc *SearchUseCase) buildQuery(req domain.SearchRequest) domain.Query {
	normalized, tokens := textnorm.NormalizeAndTokenize(req.Query)
	intent := req.IntentHint
	if intent == "" {
		intent = uc.cfg.Markers.DetectIntent(req.Query)
	}
	return domain.Query{
		Raw:        req.Query,
		Normalized: normalized,
		Tokens:     tokens,
		Intent:     intent,
		Scope:      req.Scope,
	}
}

func (uc *SearchUseCase) strategySet() string {
	names := make([]string, 0, 3)
	for _, bucket := range []domain.Bucket{domain.BucketExact, domain.BucketLemma, domain.BucketSemantic} {
		if _, ok := uc.strategies[bucket]; ok {
			names = append(names, string(bucket))
		}
	}
	return strings.Join(names, "+")
}

func (uc *SearchUseCase) readCache(ctx context.Context, key string, stageMillis map[string]int64) *domain.ResultSet {
	if uc.cache == nil {
		return nil
	}
	start := time.Now()
	defer func() { stageMillis["cache_read"] = time.Since(start).Milliseconds() }()

	raw, ok := uc.cache.Get(ctx, key)
	if !ok {
		return nil
	}
	var cached domain.ResultSet
	if err := json.Unmarshal(raw, &cached); err != nil {
		uc.logger.Warn("cache_entry_unreadable", "key", key, "error", err)
		return nil
	}
	return &cached
}

func (uc *SearchUseCase) writeCache(ctx context.Context, key string, result *domain.ResultSet, stageMillis map[string]int64) {
	if uc.cache == nil {
		return
	}
	start := time.Now()
	defer func() { stageMillis["cache_write"] = time.Since(start).Milliseconds() }()

	encoded, err := json.Marshal(result)
	if err != nil {
		uc.logger.Warn("cache_entry_unserializable", "error", err)
		return
	}
	uc.cache.Set(ctx, key, encoded, uc.cfg.CacheTTL)
}

// expandQuery asks for variations only when the router chose a mode that
// benefits from them; fact-lookup routes skip the extra LLM round trip.
func (uc *SearchUseCase) expandQuery(ctx context.Context, q domain.Query, decision domain.RoutingDecision, stageMillis map[string]int64) []string {
	if uc.expander == nil || uc.cfg.MaxExpansions == 0 || decision.Mode == domain.ModeFastExact {
		return nil
	}
	start := time.Now()
	defer func() { stageMillis["expand"] = time.Since(start).Milliseconds() }()
	return uc.expander.Expand(ctx, q.Raw, uc.cfg.MaxExpansions)
}

type fanOutResult struct {
	bucket     domain.Bucket
	candidates []domain.Candidate
	err        error
}

// fanOut issues the selected strategies as independent parallel tasks over
// the bounded worker pool, one task per (bucket, query variant). A slow or
// failing task contributes an empty slot; completed buckets keep the
// router's declared order.
func (uc *SearchUseCase) fanOut(
	ctx context.Context,
	q domain.Query,
	decision domain.RoutingDecision,
	expansions []string,
	limit, offset int,
	stageMillis map[string]int64,
) (map[domain.Bucket][]domain.Candidate, map[domain.Bucket]string) {
	start := time.Now()
	defer func() { stageMillis["fan_out"] = time.Since(start).Milliseconds() }()

	variants := make([]domain.Query, 0, 1+len(expansions))
	variants = append(variants, q)
	for _, expansion := range expansions {
		normalized, tokens := textnorm.NormalizeAndTokenize(expansion)
		variant := q
		variant.Raw = expansion
		variant.Normalized = normalized
		variant.Tokens = tokens
		variants = append(variants, variant)
	}

	var wg sync.WaitGroup
	results := make(chan fanOutResult, len(decision.Buckets)*len(variants))

	for _, bucket := range decision.Buckets {
		strategy, ok := uc.strategies[bucket]
		if !ok {
			continue
		}
		for _, variant := range variants {
			wg.Add(1)
			task := uc.searchTask(ctx, strategy, variant, limit, offset, results, &wg)
			if uc.pool != nil {
				if err := uc.pool.Submit(task); err == nil {
					continue
				}
			}
			go task()
		}
	}

	wg.Wait()
	close(results)

	collected := make(map[domain.Bucket][][]domain.Candidate, len(decision.Buckets))
	errs := make(map[domain.Bucket]error, len(decision.Buckets))
	succeeded := make(map[domain.Bucket]bool, len(decision.Buckets))
	for res := range results {
		if res.err != nil {
			if !succeeded[res.bucket] {
				errs[res.bucket] = res.err
			}
			uc.logger.Warn("strategy_degraded", "bucket", res.bucket, "error", res.err)
			if uc.observer != nil {
				uc.observer.StrategyFailure(res.bucket)
			}
			continue
		}
		succeeded[res.bucket] = true
		delete(errs, res.bucket)
		collected[res.bucket] = append(collected[res.bucket], res.candidates)
	}

	buckets := make(map[domain.Bucket][]domain.Candidate, len(collected))
	for bucket, lists := range collected {
		buckets[bucket] = mergeVariantResults(lists...)
		if uc.observer != nil {
			uc.observer.ObserveBucket(bucket, len(buckets[bucket]))
		}
	}

	strategyErrors := make(map[domain.Bucket]string, len(errs))
	for bucket, err := range errs {
		strategyErrors[bucket] = err.Error()
	}
	if len(strategyErrors) == 0 {
		strategyErrors = nil
	}
	return buckets, strategyErrors
}

func (uc *SearchUseCase) searchTask(
	ctx context.Context,
	strategy ports.RetrievalStrategy,
	variant domain.Query,
	limit, offset int,
	results chan<- fanOutResult,
	wg *sync.WaitGroup,
) func() {
	return func() {
		defer wg.Done()
		taskCtx, cancel := context.WithTimeout(ctx, uc.cfg.StrategyTimeout)
		defer cancel()

		candidates, err := strategy.Search(taskCtx, variant, limit, offset)
		results <- fanOutResult{bucket: strategy.Bucket(), candidates: candidates, err: err}
	}
}

// allBucketsFailed reports total failure: every selected strategy errored
// and nothing was produced. Anything less degrades instead of failing.
func (uc *SearchUseCase) allBucketsFailed(
	decision domain.RoutingDecision,
	buckets map[domain.Bucket][]domain.Candidate,
	strategyErrors map[domain.Bucket]string,
) bool {
	executed := 0
	for _, bucket := range decision.Buckets {
		if _, ok := uc.strategies[bucket]; ok {
			executed++
		}
	}
	if executed == 0 {
		return true
	}
	return len(strategyErrors) == executed && len(buckets) == 0
}

// finish applies the optional rerank pass and reports measurements. The
// reranker is skipped outright when the remaining call budget would not
// cover it; a partially run rerank is never useful.
func (uc *SearchUseCase) finish(ctx context.Context, req domain.SearchRequest, q domain.Query, result *domain.ResultSet, started time.Time) {
	if req.Rerank && uc.reranker != nil && len(result.Candidates) > 1 {
		if deadline, ok := ctx.Deadline(); !ok || time.Until(deadline) >= uc.reranker.Timeout() {
			rerankStart := time.Now()
			topN := uc.cfg.RerankTopN
			if topN > len(result.Candidates) {
				topN = len(result.Candidates)
			}
			reranked := uc.reranker.Rerank(ctx, q.Raw, result.Candidates, topN)
			if topN < len(result.Candidates) {
				reranked = append(reranked, result.Candidates[topN:]...)
			}
			result.Candidates = reranked
			result.Metadata.Reranked = true
			result.Metadata.StageMillis["rerank"] = time.Since(rerankStart).Milliseconds()
		}
	}

	if uc.observer != nil {
		uc.observer.ObserveSearch(result.Metadata.Route.Mode, result.Metadata.TailPolicy, result.Metadata.CacheHit, time.Since(started))
		for stage, millis := range result.Metadata.StageMillis {
			uc.observer.ObserveStage(stage, time.Duration(millis)*time.Millisecond)
		}
	}
}

// bucketSizes snapshots per-bucket counts for metadata.
func bucketSizes(buckets map[domain.Bucket][]domain.Candidate) map[domain.Bucket]int {
	sizes := make(map[domain.Bucket]int, len(buckets))
	for bucket, candidates := range buckets {
		sizes[bucket] = len(candidates)
	}
	return sizes
}

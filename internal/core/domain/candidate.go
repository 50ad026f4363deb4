package domain

// MatchType records which matching rule accepted a candidate.
type MatchType string

const (
	MatchExactBoundary   MatchType = "exact_boundary"
	MatchExactDeaccented MatchType = "exact_deaccented"
	MatchLemmaStem       MatchType = "lemma_stem"
	MatchSemantic        MatchType = "semantic"
)

// Locator points into the source item.
type Locator struct {
	Page      int `json:"page,omitempty"`
	Paragraph int `json:"paragraph,omitempty"`
}

// Candidate is one content fragment produced by a retrieval strategy.
// Candidates are ephemeral except when serialized into a cache entry.
type Candidate struct {
	ID         string            `json:"id"`
	ItemID     string            `json:"item_id"`
	Title      string            `json:"title"`
	Excerpt    string            `json:"excerpt"`
	SourceType string            `json:"source_type"`
	Locator    Locator           `json:"locator"`
	Tags       []string          `json:"tags,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Annotation string            `json:"annotation,omitempty"`
	Score      float64           `json:"score"`
	MatchType  MatchType         `json:"match_type"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// TailPolicy values reported in search metadata.
const (
	TailPolicyDynamic = "dynamic"
	TailPolicyDefault = "default"
)

// SearchMetadata describes how a result set was produced.
type SearchMetadata struct {
	SearchID       string            `json:"search_id"`
	Route          RoutingDecision   `json:"route"`
	BucketSizes    map[Bucket]int    `json:"bucket_sizes"`
	StrategyErrors map[Bucket]string `json:"strategy_errors,omitempty"`
	Expansions     []string          `json:"expansions,omitempty"`
	MixPolicy      MixPolicy         `json:"mix_policy"`
	TailPolicy     string            `json:"semantic_tail_policy"`
	EffectiveCap   int               `json:"effective_tail_cap"`
	CacheHit       bool              `json:"cache_hit"`
	Reranked       bool              `json:"reranked"`
	StageMillis    map[string]int64  `json:"stage_millis"`
}

// ResultSet is the ordered, deduplicated fusion output plus its metadata.
type ResultSet struct {
	Candidates []Candidate    `json:"candidates"`
	Metadata   SearchMetadata `json:"metadata"`
}

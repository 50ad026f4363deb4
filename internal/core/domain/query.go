package domain

// Intent is the detected question shape driving routing and planning.
type Intent string

const (
	IntentDirect      Intent = "direct"
	IntentFollowUp    Intent = "follow_up"
	IntentSynthesis   Intent = "synthesis"
	IntentComparative Intent = "comparative"
	IntentNarrative   Intent = "narrative"
	IntentSocietal    Intent = "societal"
	IntentAnalytic    Intent = "analytic"
	IntentExploratory Intent = "exploratory"
)

// ResourceType narrows the store's source-type set for a search.
type ResourceType string

const (
	ResourceAll      ResourceType = ""
	ResourceBook     ResourceType = "BOOK"
	ResourceAllNotes ResourceType = "ALL_NOTES"
)

// CompareMode controls when a compare plan may be promoted.
type CompareMode string

const (
	CompareExplicitOnly CompareMode = "explicit_only"
	CompareAuto         CompareMode = "auto"
)

// Scope is the per-user filter every retrieval call runs under.
type Scope struct {
	UserID        string       `json:"user_id"`
	ResourceType  ResourceType `json:"resource_type,omitempty"`
	TargetItemIDs []string     `json:"target_item_ids,omitempty"`
	CompareMode   CompareMode  `json:"compare_mode,omitempty"`
}

// Query is the per-call retrieval input. Created per inbound call,
// discarded when the call returns.
type Query struct {
	Raw        string   `json:"raw"`
	Normalized string   `json:"normalized"`
	Tokens     []string `json:"tokens"`
	Intent     Intent   `json:"intent"`
	Scope      Scope    `json:"scope"`
}

// TokenCount reports the number of normalized tokens.
func (q Query) TokenCount() int {
	return len(q.Tokens)
}

// RetrievalMode selects the strategy mix for a query.
type RetrievalMode string

const (
	ModeFastExact     RetrievalMode = "fast_exact"
	ModeSemanticFocus RetrievalMode = "semantic_focus"
	ModeBalanced      RetrievalMode = "balanced"
)

// Bucket names one retrieval strategy's output slot.
type Bucket string

const (
	BucketExact    Bucket = "exact"
	BucketLemma    Bucket = "lemma"
	BucketSemantic Bucket = "semantic"
)

// IsLexical reports whether the bucket holds literal/morphological matches.
func (b Bucket) IsLexical() bool {
	return b == BucketExact || b == BucketLemma
}

// RoutingDecision is the semantic router's output: a mode plus the ordered
// bucket subset to fan out to.
type RoutingDecision struct {
	Mode    RetrievalMode `json:"mode"`
	Buckets []Bucket      `json:"buckets"`
}

// PlanType classifies how the downstream answer pipeline should treat a query.
type PlanType string

const (
	PlanDirect    PlanType = "DIRECT"
	PlanSynthesis PlanType = "SYNTHESIS"
	PlanCompare   PlanType = "COMPARE"
	PlanAnalytic  PlanType = "ANALYTIC"
	PlanExplorer  PlanType = "EXPLORER"
)

// QueryPlan is the query plan builder's output. DegradeReason is non-empty
// whenever compare preconditions were only partially met, so ambiguous
// cases stay observable instead of being silently promoted or demoted.
type QueryPlan struct {
	PlanType         PlanType `json:"plan_type"`
	CompareRequested bool     `json:"compare_requested"`
	TargetIDs        []string `json:"target_ids,omitempty"`
	DegradeReason    string   `json:"degrade_reason,omitempty"`
}

// SearchRequest is the engine's inbound call shape.
type SearchRequest struct {
	Query           string
	Scope           Scope
	Limit           int
	Offset          int
	IntentHint      Intent
	DefaultMode     RetrievalMode
	MixPolicy       MixPolicy
	SemanticTailCap int
	Rerank          bool
}

// PlanRequest feeds the query plan builder.
type PlanRequest struct {
	Question         string
	Intent           Intent
	IsAnalytic       bool
	CompareMode      CompareMode
	RequestedTargets []string
	ContextItemID    string
	ResolvedCompare  []string
}

// MixPolicy names the fusion policy applied to bucket outputs.
type MixPolicy string

const (
	// MixLexicalThenSemanticTail includes all lexical candidates first and
	// appends a capped semantic tail. It never interleaves semantic
	// candidates ahead of lexical ones.
	MixLexicalThenSemanticTail MixPolicy = "lexical_then_semantic_tail"
	// MixBucketConcat concatenates buckets in router order without a tail cap.
	MixBucketConcat MixPolicy = "bucket_concat"
)

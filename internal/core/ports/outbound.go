package ports

import (
	"context"
	"time"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

// RetrievalStrategy is the single capability contract shared by the exact,
// lemma and semantic adapters. The orchestrator never inspects concrete
// types; new strategies are added by implementing this interface.
type RetrievalStrategy interface {
	Bucket() domain.Bucket
	Search(ctx context.Context, q domain.Query, limit, offset int) ([]domain.Candidate, error)
}

// Embedder turns query text into a fixed-dimension vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CompletionProvider produces short language-model completions for
// JSON-shaped prompts. Callers apply their own strict timeouts.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ResultCache is the keyed store used for fused result sets and query
// expansions. Implementations are fail-open: backend outages behave as
// misses, never as errors visible to callers.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	DeletePattern(ctx context.Context, pattern string)
}

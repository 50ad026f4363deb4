package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
	"github.com/kitaplik/reading-assistant/internal/core/ports"
)

// rerankMaxCandidates bounds the slice sent to the cross-encoder pass.
const rerankMaxCandidates = 30

// Reranker asks the LLM provider to score the top candidates against the
// query. Strictly additive: on any failure it returns the original order,
// so the pipeline is never worse than skipping it.
type Reranker struct {
	provider ports.CompletionProvider
	timeout  time.Duration
	logger   *slog.Logger
}

func NewReranker(provider ports.CompletionProvider, timeout time.Duration, logger *slog.Logger) *Reranker {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reranker{provider: provider, timeout: timeout, logger: logger}
}

// Timeout reports the reranker's per-call budget; the orchestrator skips
// the pass entirely when less than this remains.
func (r *Reranker) Timeout() time.Duration {
	return r.timeout
}

// Rerank re-sorts the top slice by cross-encoder score and returns topN
// candidates. topN <= 0 means len(candidates).
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.Candidate, topN int) []domain.Candidate {
	if topN <= 0 || topN > len(candidates) {
		topN = len(candidates)
	}
	if r == nil || r.provider == nil || len(candidates) == 0 {
		return candidates[:topN]
	}

	head := topN
	if head > rerankMaxCandidates {
		head = rerankMaxCandidates
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.provider.Complete(callCtx, buildRerankPrompt(query, candidates[:head]))
	if err != nil {
		r.logger.Warn("rerank_failed", "error", err)
		return candidates[:topN]
	}

	scores, err := parseRerankResponse(raw, head)
	if err != nil {
		r.logger.Warn("rerank_unparsable", "error", err)
		return candidates[:topN]
	}

	type scored struct {
		candidate domain.Candidate
		score     float64
	}
	reranked := make([]scored, head)
	for i := 0; i < head; i++ {
		reranked[i] = scored{candidate: candidates[i], score: scores[i]}
	}
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].score > reranked[j].score
	})

	out := make([]domain.Candidate, 0, topN)
	for _, item := range reranked {
		out = append(out, item.candidate)
	}
	out = append(out, candidates[head:topN]...)
	return out
}

func buildRerankPrompt(query string, candidates []domain.Candidate) string {
	var b strings.Builder
	b.WriteString("Score each passage for relevance to the query on a 0-1 scale. ")
	b.WriteString("Respond with a JSON array of {\"index\": int, \"score\": float} and nothing else.\n\n")
	fmt.Fprintf(&b, "Query: %q\n\nPassages:\n", query)
	for i, candidate := range candidates {
		fmt.Fprintf(&b, "[%d] %s\n", i, snippet(candidate.Excerpt, 280))
	}
	return b.String()
}

// parseRerankResponse maps candidate index to score, tolerating fencing
// and prose around the JSON array. Out-of-range indices are dropped;
// unscored candidates keep score 0 and sink behind scored ones.
func parseRerankResponse(raw string, count int) ([]float64, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, domain.WrapError(domain.ErrMalformedResponse, "rerank", fmt.Errorf("no JSON array in response"))
	}

	var parsed []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, domain.WrapError(domain.ErrMalformedResponse, "rerank", err)
	}
	if len(parsed) == 0 {
		return nil, domain.WrapError(domain.ErrMalformedResponse, "rerank", fmt.Errorf("empty score list"))
	}

	scores := make([]float64, count)
	for _, item := range parsed {
		if item.Index < 0 || item.Index >= count {
			continue
		}
		scores[item.Index] = item.Score
	}
	return scores, nil
}

func snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

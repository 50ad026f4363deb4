package usecase

import (
	"sort"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

// defaultSemanticTailCap applies when the caller supplies no static cap.
const defaultSemanticTailCap = 5

// dynamicSemanticTailCap shrinks the semantic tail as lexical volume grows.
// Single-root queries over a large personal corpus produce many lexical
// hits; an uncapped semantic tail would dilute precision.
func dynamicSemanticTailCap(lexicalCount int) int {
	switch {
	case lexicalCount >= 31:
		return 2
	case lexicalCount >= 20:
		return 3
	case lexicalCount >= 10:
		return 4
	default:
		return 5
	}
}

// fuseBuckets concatenates bucket outputs in router order under the given
// mix policy. Under lexical_then_semantic_tail the lexical buckets are
// fully included first and a capped semantic tail is appended; the dynamic
// cap applies only to single-token queries. Bucket-internal order is
// preserved. Returns the fused list, the tail policy applied and the
// effective cap.
func fuseBuckets(
	buckets map[domain.Bucket][]domain.Candidate,
	order []domain.Bucket,
	policy domain.MixPolicy,
	tokenCount int,
	staticCap int,
) ([]domain.Candidate, string, int) {
	if policy == domain.MixBucketConcat {
		var out []domain.Candidate
		for _, bucket := range order {
			out = append(out, buckets[bucket]...)
		}
		return out, domain.TailPolicyDefault, 0
	}

	var lexical, semantic []domain.Candidate
	for _, bucket := range order {
		if bucket.IsLexical() {
			lexical = append(lexical, buckets[bucket]...)
		} else {
			semantic = append(semantic, buckets[bucket]...)
		}
	}

	tailCap := staticCap
	policyApplied := domain.TailPolicyDefault
	if tailCap <= 0 {
		tailCap = defaultSemanticTailCap
	}
	if tokenCount == 1 {
		tailCap = dynamicSemanticTailCap(len(lexical))
		policyApplied = domain.TailPolicyDynamic
	}

	if len(semantic) > tailCap {
		semantic = semantic[:tailCap]
	}
	return append(lexical, semantic...), policyApplied, tailCap
}

// dedupeCandidates removes duplicate ids, first occurrence wins. Fusion
// order is preserved.
func dedupeCandidates(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, candidate := range candidates {
		if _, ok := seen[candidate.ID]; ok {
			continue
		}
		seen[candidate.ID] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// mergeVariantResults combines candidates retrieved for the original query
// and its expansions into one bucket: best score per id wins, then the
// bucket is re-sorted so relevance stays non-increasing.
func mergeVariantResults(lists ...[]domain.Candidate) []domain.Candidate {
	best := make(map[string]domain.Candidate)
	orderIdx := make(map[string]int)
	next := 0
	for _, list := range lists {
		for _, candidate := range list {
			current, ok := best[candidate.ID]
			if !ok {
				best[candidate.ID] = candidate
				orderIdx[candidate.ID] = next
				next++
				continue
			}
			if candidate.Score > current.Score {
				best[candidate.ID] = candidate
			}
		}
	}

	out := make([]domain.Candidate, 0, len(best))
	for id := range best {
		out = append(out, best[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return orderIdx[out[i].ID] < orderIdx[out[j].ID]
	})
	return out
}

// trimCandidates bounds the final candidate list.
func trimCandidates(candidates []domain.Candidate, limit int) []domain.Candidate {
	if limit <= 0 || len(candidates) <= limit {
		return candidates
	}
	return candidates[:limit]
}

package usecase

import "github.com/kitaplik/reading-assistant/internal/core/domain"

// shortQueryTokenLimit is the token count at or below which a query is
// considered fact-lookup shaped for routing.
const shortQueryTokenLimit = 2

// RouteQuery maps query shape and intent to a retrieval mode plus the
// ordered bucket subset to fan out to. Pure and deterministic: no state,
// no side effects.
//
// Rules, in order:
//  1. an explicit default mode wins;
//  2. fact-lookup intents (direct, follow-up) route to fast_exact;
//  3. a single conceptual root from the needs-definition hint set routes
//     to semantic_focus with the lemma bucket leading;
//  4. short non-conceptual queries and everything else route to balanced.
func RouteQuery(q domain.Query, defaultMode domain.RetrievalMode, markers MarkerSet) domain.RoutingDecision {
	if defaultMode != "" {
		return decisionForMode(defaultMode)
	}

	if q.Intent == domain.IntentDirect || q.Intent == domain.IntentFollowUp {
		return decisionForMode(domain.ModeFastExact)
	}

	if q.TokenCount() == 1 && markers.IsConceptualRoot(q.Tokens[0]) {
		return decisionForMode(domain.ModeSemanticFocus)
	}

	if q.TokenCount() <= shortQueryTokenLimit {
		return decisionForMode(domain.ModeBalanced)
	}

	return decisionForMode(domain.ModeBalanced)
}

func decisionForMode(mode domain.RetrievalMode) domain.RoutingDecision {
	switch mode {
	case domain.ModeFastExact:
		return domain.RoutingDecision{
			Mode:    domain.ModeFastExact,
			Buckets: []domain.Bucket{domain.BucketExact, domain.BucketLemma},
		}
	case domain.ModeSemanticFocus:
		return domain.RoutingDecision{
			Mode:    domain.ModeSemanticFocus,
			Buckets: []domain.Bucket{domain.BucketLemma, domain.BucketSemantic, domain.BucketExact},
		}
	default:
		return domain.RoutingDecision{
			Mode:    domain.ModeBalanced,
			Buckets: []domain.Bucket{domain.BucketExact, domain.BucketLemma, domain.BucketSemantic},
		}
	}
}

package usecase

import (
	"github.com/kitaplik/reading-assistant/internal/core/domain"
	"github.com/kitaplik/reading-assistant/internal/core/textnorm"
)

// Degrade reasons reported by the query plan builder. Partially met compare
// preconditions always produce a reason instead of a silent guess.
const (
	DegradeInsufficientTargets = "insufficient_target_books"
	DegradeCompareModeForbids  = "compare_mode_forbids"
	// DegradeSingleTargetContext marks a compare that would collapse onto
	// the single context item currently being read.
	DegradeSingleTargetContext = "single_target_context"
)

// BuildQueryPlan maps a question, its intent and the resolved scope to a
// plan type. Pure and deterministic.
//
// Analytic intents short-circuit. A compare plan requires at least two
// target ids and either auto mode with comparative intent, or explicit-only
// mode with comparative intent or explicit compare markers in the text.
// A secondary notes-vs-book compare triggers on a context item when the
// question matches both compare and personal-notes markers.
func BuildQueryPlan(req domain.PlanRequest, markers MarkerSet) domain.QueryPlan {
	if req.IsAnalytic || req.Intent == domain.IntentAnalytic {
		return domain.QueryPlan{PlanType: domain.PlanAnalytic}
	}

	normalized := textnorm.NormalizeText(req.Question)
	compareMarkers := markers.MatchesCompare(normalized)
	notesMarkers := markers.MatchesPersonalNotes(normalized)

	targets := req.RequestedTargets
	if len(targets) == 0 {
		targets = req.ResolvedCompare
	}

	mode := req.CompareMode
	if mode == "" {
		mode = domain.CompareExplicitOnly
	}

	compareSignal := req.Intent == domain.IntentComparative || compareMarkers
	modeAllows := (mode == domain.CompareAuto && req.Intent == domain.IntentComparative) ||
		(mode == domain.CompareExplicitOnly && (compareMarkers || req.Intent == domain.IntentComparative))

	if req.ContextItemID != "" && compareMarkers && notesMarkers {
		// Notes-vs-book compare runs against a single context item.
		return domain.QueryPlan{
			PlanType:         domain.PlanCompare,
			CompareRequested: true,
			TargetIDs:        []string{req.ContextItemID},
		}
	}

	if compareSignal {
		switch {
		case len(targets) < 2:
			reason := DegradeInsufficientTargets
			if req.ContextItemID != "" {
				reason = DegradeSingleTargetContext
			}
			return domain.QueryPlan{
				PlanType:      fallbackPlan(req.Intent),
				TargetIDs:     targets,
				DegradeReason: reason,
			}
		case !modeAllows:
			return domain.QueryPlan{
				PlanType:      fallbackPlan(req.Intent),
				TargetIDs:     targets,
				DegradeReason: DegradeCompareModeForbids,
			}
		default:
			return domain.QueryPlan{
				PlanType:         domain.PlanCompare,
				CompareRequested: true,
				TargetIDs:        targets,
			}
		}
	}

	return domain.QueryPlan{PlanType: fallbackPlan(req.Intent), TargetIDs: targets}
}

func fallbackPlan(intent domain.Intent) domain.PlanType {
	switch intent {
	case domain.IntentSynthesis, domain.IntentComparative, domain.IntentNarrative, domain.IntentSocietal:
		return domain.PlanSynthesis
	case domain.IntentDirect, domain.IntentFollowUp:
		return domain.PlanDirect
	default:
		return domain.PlanExplorer
	}
}

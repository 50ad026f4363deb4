package usecase

import (
	"reflect"
	"testing"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

func TestBuildQueryPlanAnalyticShortCircuits(t *testing.T) {
	markers := DefaultMarkers()

	plan := BuildQueryPlan(domain.PlanRequest{
		Question:   "kac kitap okudum",
		IsAnalytic: true,
	}, markers)
	if plan.PlanType != domain.PlanAnalytic {
		t.Fatalf("plan type = %s, want %s", plan.PlanType, domain.PlanAnalytic)
	}

	plan = BuildQueryPlan(domain.PlanRequest{
		Question: "en cok hangi yazari okudum",
		Intent:   domain.IntentAnalytic,
	}, markers)
	if plan.PlanType != domain.PlanAnalytic {
		t.Fatalf("plan type = %s, want %s", plan.PlanType, domain.PlanAnalytic)
	}
}

func TestBuildQueryPlanCompare(t *testing.T) {
	markers := DefaultMarkers()

	tests := []struct {
		name        string
		req         domain.PlanRequest
		wantType    domain.PlanType
		wantTargets []string
		wantReason  string
		wantCompare bool
	}{
		{
			name: "two explicit targets with compare markers",
			req: domain.PlanRequest{
				Question:         "bu iki romani karşılaştır",
				Intent:           domain.IntentComparative,
				RequestedTargets: []string{"b1", "b2"},
			},
			wantType:    domain.PlanCompare,
			wantTargets: []string{"b1", "b2"},
			wantCompare: true,
		},
		{
			name: "resolved targets fill in when none requested",
			req: domain.PlanRequest{
				Question:        "ikisi arasindaki fark nedir",
				Intent:          domain.IntentComparative,
				ResolvedCompare: []string{"b3", "b4"},
			},
			wantType:    domain.PlanCompare,
			wantTargets: []string{"b3", "b4"},
			wantCompare: true,
		},
		{
			name: "single target degrades with insufficient targets",
			req: domain.PlanRequest{
				Question:         "bu romani digerleriyle karşılaştır",
				Intent:           domain.IntentComparative,
				RequestedTargets: []string{"b1"},
			},
			wantType:    domain.PlanSynthesis,
			wantTargets: []string{"b1"},
			wantReason:  DegradeInsufficientTargets,
		},
		{
			name: "compare against context item alone degrades",
			req: domain.PlanRequest{
				Question:      "bu kitabi oncekiyle karsilastir",
				Intent:        domain.IntentComparative,
				ContextItemID: "b9",
			},
			wantType:   domain.PlanSynthesis,
			wantReason: DegradeSingleTargetContext,
		},
		{
			name: "auto mode without comparative intent degrades",
			req: domain.PlanRequest{
				Question:         "hangisi daha iyi anlatiyor",
				Intent:           domain.IntentSynthesis,
				CompareMode:      domain.CompareAuto,
				RequestedTargets: []string{"b1", "b2"},
			},
			wantType:    domain.PlanSynthesis,
			wantTargets: []string{"b1", "b2"},
			wantReason:  DegradeCompareModeForbids,
		},
		{
			name: "explicit-only mode accepts marker-driven compare",
			req: domain.PlanRequest{
				Question:         "iki kitabin farki nedir",
				Intent:           domain.IntentSynthesis,
				CompareMode:      domain.CompareExplicitOnly,
				RequestedTargets: []string{"b1", "b2"},
			},
			wantType:    domain.PlanCompare,
			wantTargets: []string{"b1", "b2"},
			wantCompare: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BuildQueryPlan(tt.req, markers)
			if plan.PlanType != tt.wantType {
				t.Fatalf("plan type = %s, want %s", plan.PlanType, tt.wantType)
			}
			if !reflect.DeepEqual(plan.TargetIDs, tt.wantTargets) {
				t.Fatalf("targets = %v, want %v", plan.TargetIDs, tt.wantTargets)
			}
			if plan.DegradeReason != tt.wantReason {
				t.Fatalf("degrade reason = %q, want %q", plan.DegradeReason, tt.wantReason)
			}
			if plan.CompareRequested != tt.wantCompare {
				t.Fatalf("compare requested = %v, want %v", plan.CompareRequested, tt.wantCompare)
			}
		})
	}
}

func TestBuildQueryPlanNotesVersusBook(t *testing.T) {
	markers := DefaultMarkers()

	plan := BuildQueryPlan(domain.PlanRequest{
		Question:      "notlarim ile kitabin ozeti arasindaki fark nedir",
		Intent:        domain.IntentComparative,
		ContextItemID: "b9",
	}, markers)
	if plan.PlanType != domain.PlanCompare {
		t.Fatalf("plan type = %s, want %s", plan.PlanType, domain.PlanCompare)
	}
	if !reflect.DeepEqual(plan.TargetIDs, []string{"b9"}) {
		t.Fatalf("targets = %v, want the context item only", plan.TargetIDs)
	}
	if !plan.CompareRequested {
		t.Fatalf("expected compare requested")
	}
}

func TestBuildQueryPlanFallbacks(t *testing.T) {
	markers := DefaultMarkers()

	tests := []struct {
		intent domain.Intent
		want   domain.PlanType
	}{
		{domain.IntentSynthesis, domain.PlanSynthesis},
		{domain.IntentNarrative, domain.PlanSynthesis},
		{domain.IntentSocietal, domain.PlanSynthesis},
		{domain.IntentDirect, domain.PlanDirect},
		{domain.IntentFollowUp, domain.PlanDirect},
		{domain.IntentExploratory, domain.PlanExplorer},
	}
	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			plan := BuildQueryPlan(domain.PlanRequest{
				Question: "yalnizlik temasi uzerine",
				Intent:   tt.intent,
			}, markers)
			if plan.PlanType != tt.want {
				t.Fatalf("plan type = %s, want %s", plan.PlanType, tt.want)
			}
		})
	}
}

package postgres

import (
	"reflect"
	"testing"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

func TestSourceTypesForResourceMapping(t *testing.T) {
	tests := []struct {
		resource domain.ResourceType
		want     []string
	}{
		{domain.ResourceBook, []string{"book_chunk", "book_summary"}},
		{domain.ResourceAllNotes, []string{"annotation", "note"}},
		{domain.ResourceAll, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.resource), func(t *testing.T) {
			got := sourceTypesFor(tt.resource)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("sourceTypesFor(%q) = %v, want %v", tt.resource, got, tt.want)
			}
		})
	}
}

func TestAppendScopeFilter(t *testing.T) {
	tests := []struct {
		name      string
		scope     domain.Scope
		alias     string
		wantConds []string
		wantArgs  []any
	}{
		{
			name:      "book scope restricts source types",
			scope:     domain.Scope{UserID: "u1", ResourceType: domain.ResourceBook},
			wantConds: []string{"user_id = $1", "source_type = ANY($2)"},
			wantArgs:  []any{"u1", []string{"book_chunk", "book_summary"}},
		},
		{
			name:      "all-notes scope restricts to annotations and notes",
			scope:     domain.Scope{UserID: "u1", ResourceType: domain.ResourceAllNotes},
			wantConds: []string{"user_id = $1", "source_type = ANY($2)"},
			wantArgs:  []any{"u1", []string{"annotation", "note"}},
		},
		{
			name:      "unset resource type filters only by user",
			scope:     domain.Scope{UserID: "u1"},
			wantConds: []string{"user_id = $1"},
			wantArgs:  []any{"u1"},
		},
		{
			name: "target items narrow further with alias",
			scope: domain.Scope{
				UserID:        "u1",
				ResourceType:  domain.ResourceBook,
				TargetItemIDs: []string{"b1", "b2"},
			},
			alias:     "c",
			wantConds: []string{"c.user_id = $1", "c.source_type = ANY($2)", "c.item_id = ANY($3)"},
			wantArgs:  []any{"u1", []string{"book_chunk", "book_summary"}, []string{"b1", "b2"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conds, args := appendScopeFilter(nil, nil, tt.scope, tt.alias)
			if !reflect.DeepEqual(conds, tt.wantConds) {
				t.Fatalf("conds = %v, want %v", conds, tt.wantConds)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestPageCandidatesCountsVerifiedOnly(t *testing.T) {
	candidates := []domain.Candidate{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	page := pageCandidates(candidates, 2, 1)
	if len(page) != 2 || page[0].ID != "b" || page[1].ID != "c" {
		t.Fatalf("pageCandidates(2, 1) = %+v, want [b c]", page)
	}
	if got := pageCandidates(candidates, 10, 3); got != nil {
		t.Fatalf("offset past the end must return nil, got %+v", got)
	}
}

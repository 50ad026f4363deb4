package ports

import (
	"context"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

// SearchService is the inbound contract for retrieval fusion.
type SearchService interface {
	Search(ctx context.Context, req domain.SearchRequest) (*domain.ResultSet, error)
	Plan(req domain.PlanRequest) domain.QueryPlan
}

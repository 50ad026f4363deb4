package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
	"github.com/kitaplik/reading-assistant/internal/core/textnorm"
)

// overfetchFactor compensates for rows the boundary verifier rejects:
// a LIKE hit inside a longer token is discarded after the fetch. The fetch
// window covers limit+offset because pagination is applied to verified
// candidates, never to raw rows.
const overfetchFactor = 3

// ExactStrategy matches the literal normalized query against normalized
// chunk text. Multi-word queries match as a phrase. A hit counts only when
// it aligns with token boundaries on both sides.
type ExactStrategy struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExactStrategy(db *sql.DB, logger *slog.Logger) *ExactStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExactStrategy{db: db, logger: logger}
}

func (s *ExactStrategy) Bucket() domain.Bucket {
	return domain.BucketExact
}

func (s *ExactStrategy) Search(ctx context.Context, q domain.Query, limit, offset int) ([]domain.Candidate, error) {
	term := strings.TrimSpace(q.Normalized)
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	if offset < 0 {
		offset = 0
	}

	conds := []string{"normalized_excerpt LIKE $1 ESCAPE '\\'"}
	args := []any{"%" + escapeLike(term) + "%"}
	conds, args = appendScopeFilter(conds, args, q.Scope, "")
	args = append(args, (limit+offset)*overfetchFactor)

	query := fmt.Sprintf(`
SELECT %s
FROM content_chunks
WHERE %s
ORDER BY item_id, page, paragraph
LIMIT $%d
`, candidateColumns, strings.Join(conds, " AND "), len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorageQuery, "exact search", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		row, err := scanCandidate(rows, false)
		if err != nil {
			return nil, domain.WrapError(domain.ErrStorageQuery, "exact search", err)
		}
		hits := textnorm.CountBoundaryHits(row.candidate.Excerpt, term)
		if hits == 0 {
			// LIKE hit inside a longer token; not a real match.
			continue
		}
		candidate := row.candidate
		candidate.Score = float64(hits)
		candidate.MatchType = exactMatchType(candidate.Excerpt, q.Raw)
		candidate.Meta = map[string]string{"hits": strconv.Itoa(hits)}
		out = append(out, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStorageQuery, "exact search", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return pageCandidates(out, limit, offset), nil
}

// exactMatchType distinguishes hits that needed deaccenting from hits
// present verbatim in the source text.
func exactMatchType(excerpt, rawQuery string) domain.MatchType {
	raw := strings.ToLower(strings.TrimSpace(rawQuery))
	if raw != "" && strings.Contains(strings.ToLower(excerpt), raw) {
		return domain.MatchExactBoundary
	}
	return domain.MatchExactDeaccented
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
	"github.com/kitaplik/reading-assistant/internal/core/textnorm"
)

// LemmaStrategy matches query roots against the precomputed per-chunk
// lemma index, accepting morphological derivations while rejecting
// inner-substring-only hits. Per-chunk hit counts rank the bucket.
type LemmaStrategy struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLemmaStrategy(db *sql.DB, logger *slog.Logger) *LemmaStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &LemmaStrategy{db: db, logger: logger}
}

func (s *LemmaStrategy) Bucket() domain.Bucket {
	return domain.BucketLemma
}

func (s *LemmaStrategy) Search(ctx context.Context, q domain.Query, limit, offset int) ([]domain.Candidate, error) {
	if len(q.Tokens) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	if offset < 0 {
		offset = 0
	}

	conds := []string{}
	args := []any{}
	conds, args = appendScopeFilter(conds, args, q.Scope, "c")
	args = append(args, q.Tokens)
	conds = append(conds, fmt.Sprintf("l.lemma = ANY($%d)", len(args)))
	args = append(args, (limit+offset)*overfetchFactor)

	columns := prefixColumns(candidateColumns, "c")
	query := fmt.Sprintf(`
SELECT %s, SUM(l.hit_count) AS hits
FROM chunk_lemmas l
JOIN content_chunks c ON c.id = l.chunk_id
WHERE %s
GROUP BY %s
ORDER BY hits DESC, c.item_id, c.page
LIMIT $%d
`, columns, strings.Join(conds, " AND "), columns, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorageQuery, "lemma search", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		row, err := scanCandidate(rows, true)
		if err != nil {
			return nil, domain.WrapError(domain.ErrStorageQuery, "lemma search", err)
		}
		if !anyLemmaBoundaryMatch(row.candidate.Excerpt, q.Tokens) {
			// The index pointed here, but the root only occurs inside a
			// longer unrelated token in the visible excerpt.
			continue
		}
		candidate := row.candidate
		candidate.Score = float64(row.hits)
		candidate.MatchType = domain.MatchLemmaStem
		candidate.Meta = map[string]string{"hits": strconv.Itoa(row.hits)}
		out = append(out, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStorageQuery, "lemma search", err)
	}

	return pageCandidates(out, limit, offset), nil
}

func anyLemmaBoundaryMatch(excerpt string, roots []string) bool {
	for _, root := range roots {
		if textnorm.HasLemmaMatch(excerpt, root) {
			return true
		}
	}
	return false
}

// prefixColumns qualifies the shared candidate column list with a table
// alias for joined queries.
func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
	"github.com/kitaplik/reading-assistant/internal/core/ports"
)

// maxSemanticCandidates bounds the semantic bucket regardless of the
// requested limit; far vector neighbors are noise, not recall.
const maxSemanticCandidates = 50

// SemanticStrategy embeds the query and runs nearest-neighbor search over
// the pgvector column, ordered by cosine similarity.
type SemanticStrategy struct {
	db       *sql.DB
	embedder ports.Embedder
	logger   *slog.Logger
}

func NewSemanticStrategy(db *sql.DB, embedder ports.Embedder, logger *slog.Logger) *SemanticStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticStrategy{db: db, embedder: embedder, logger: logger}
}

func (s *SemanticStrategy) Bucket() domain.Bucket {
	return domain.BucketSemantic
}

func (s *SemanticStrategy) Search(ctx context.Context, q domain.Query, limit, offset int) ([]domain.Candidate, error) {
	if strings.TrimSpace(q.Raw) == "" {
		return nil, nil
	}
	if limit <= 0 || limit > maxSemanticCandidates {
		limit = maxSemanticCandidates
	}

	vector, err := s.embedder.EmbedQuery(ctx, q.Raw)
	if err != nil {
		return nil, err
	}

	conds := []string{"embedding IS NOT NULL"}
	args := []any{}
	conds, args = appendScopeFilter(conds, args, q.Scope, "")
	args = append(args, vectorLiteral(vector))
	vectorArg := len(args)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
SELECT %s, 1 - (embedding <=> $%d::vector) AS score
FROM content_chunks
WHERE %s
ORDER BY embedding <=> $%d::vector
LIMIT $%d OFFSET $%d
`, candidateColumns, vectorArg, strings.Join(conds, " AND "), vectorArg, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStorageQuery, "semantic search", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var (
			row   candidateRow
			score float64
		)
		row, err := scanCandidateWithScore(rows, &score)
		if err != nil {
			return nil, domain.WrapError(domain.ErrStorageQuery, "semantic search", err)
		}
		candidate := row.candidate
		candidate.Score = score
		candidate.MatchType = domain.MatchSemantic
		out = append(out, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrStorageQuery, "semantic search", err)
	}
	return out, nil
}

func scanCandidateWithScore(rows *sql.Rows, score *float64) (candidateRow, error) {
	var (
		row        candidateRow
		annotation sql.NullString
		summary    sql.NullString
		tagsRaw    []byte
	)
	err := rows.Scan(
		&row.candidate.ID,
		&row.candidate.ItemID,
		&row.candidate.Title,
		&row.candidate.SourceType,
		&row.candidate.Locator.Page,
		&row.candidate.Locator.Paragraph,
		&row.candidate.Excerpt,
		&annotation,
		&summary,
		&tagsRaw,
		score,
	)
	if err != nil {
		return candidateRow{}, fmt.Errorf("scan candidate: %w", err)
	}
	row.candidate.Annotation = annotation.String
	row.candidate.Summary = summary.String
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &row.candidate.Tags); err != nil {
			return candidateRow{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	return row, nil
}

func vectorLiteral(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%g", v)
	}
	b.WriteByte(']')
	return b.String()
}

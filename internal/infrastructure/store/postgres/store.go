// Package postgres implements the exact, lemma and semantic retrieval
// strategies over the content store: normalized chunk text for literal
// lookup, a precomputed per-chunk lemma index, and a pgvector column for
// nearest-neighbor search.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the retrieval tables if missing. The ingestion
// collaborator owns writes; this engine only ever reads them.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent daemon startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS content_chunks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	title TEXT NOT NULL,
	source_type TEXT NOT NULL,
	page INT NOT NULL DEFAULT 0,
	paragraph INT NOT NULL DEFAULT 0,
	excerpt TEXT NOT NULL,
	normalized_excerpt TEXT NOT NULL,
	annotation TEXT,
	summary TEXT,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	embedding vector(768)
);

CREATE INDEX IF NOT EXISTS idx_content_chunks_user ON content_chunks(user_id, source_type);
CREATE INDEX IF NOT EXISTS idx_content_chunks_item ON content_chunks(user_id, item_id);

CREATE TABLE IF NOT EXISTS chunk_lemmas (
	chunk_id TEXT NOT NULL REFERENCES content_chunks(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	lemma TEXT NOT NULL,
	hit_count INT NOT NULL DEFAULT 1,
	PRIMARY KEY (chunk_id, lemma)
);

CREATE INDEX IF NOT EXISTS idx_chunk_lemmas_lookup ON chunk_lemmas(user_id, lemma);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

const candidateColumns = "id, item_id, title, source_type, page, paragraph, excerpt, annotation, summary, tags"

// sourceTypesFor maps the scope's resource type onto the store's
// source-type set.
func sourceTypesFor(rt domain.ResourceType) []string {
	switch rt {
	case domain.ResourceBook:
		return []string{"book_chunk", "book_summary"}
	case domain.ResourceAllNotes:
		return []string{"annotation", "note"}
	default:
		return nil
	}
}

// appendScopeFilter adds the per-user scope conditions to a WHERE clause
// under construction. Every query is user-scoped; resource type and target
// items narrow further.
func appendScopeFilter(conds []string, args []any, scope domain.Scope, alias string) ([]string, []any) {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}

	args = append(args, scope.UserID)
	conds = append(conds, fmt.Sprintf("%suser_id = $%d", prefix, len(args)))

	if types := sourceTypesFor(scope.ResourceType); len(types) > 0 {
		args = append(args, types)
		conds = append(conds, fmt.Sprintf("%ssource_type = ANY($%d)", prefix, len(args)))
	}
	if len(scope.TargetItemIDs) > 0 {
		args = append(args, scope.TargetItemIDs)
		conds = append(conds, fmt.Sprintf("%sitem_id = ANY($%d)", prefix, len(args)))
	}
	return conds, args
}

// pageCandidates applies limit/offset over verified candidates. Paging in
// SQL would count raw rows, including ones the boundary verifier rejects,
// so page boundaries could skip or repeat accepted hits.
func pageCandidates(candidates []domain.Candidate, limit, offset int) []domain.Candidate {
	if offset >= len(candidates) {
		return nil
	}
	candidates = candidates[offset:]
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// escapeLike neutralizes LIKE wildcards in user-supplied terms.
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

type candidateRow struct {
	candidate domain.Candidate
	hits      int
}

func scanCandidate(rows *sql.Rows, extraHits bool) (candidateRow, error) {
	var (
		row        candidateRow
		annotation sql.NullString
		summary    sql.NullString
		tagsRaw    []byte
	)
	dest := []any{
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
	}
	if extraHits {
		dest = append(dest, &row.hits)
	}
	if err := rows.Scan(dest...); err != nil {
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

package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

func candidateRowsWithHits() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "item_id", "title", "source_type", "page", "paragraph",
		"excerpt", "annotation", "summary", "tags", "hits",
	})
}

func TestLemmaSearchRanksByAggregatedHitCount(t *testing.T) {
	mock, _, lemma, done := newMockDB(t)
	defer done()

	hitRows := candidateRowsWithHits().
		AddRow("high", "b1", "Kitap", "book_chunk", 2, 1,
			"Ozgurlukten soz eden, ozgurlugun bedelini bilir.", nil, nil, []byte(`[]`), 4).
		AddRow("low", "b1", "Kitap", "book_chunk", 9, 1,
			"Ozgur bir zihin sorular sorar.", nil, nil, []byte(`[]`), 1)

	mock.ExpectQuery("SELECT c.id, c.item_id").
		WillReturnRows(hitRows)

	got, err := lemma.Search(context.Background(), bookQuery("özgürlük", "ozgurluk", []string{"ozgurluk"}), 10, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate after excerpt verification, got %d", len(got))
	}
	if got[0].ID != "high" {
		t.Fatalf("expected high, got %s", got[0].ID)
	}
	if got[0].MatchType != domain.MatchLemmaStem {
		t.Fatalf("match type = %s, want %s", got[0].MatchType, domain.MatchLemmaStem)
	}
	if got[0].Score != 4 {
		t.Fatalf("score = %f, want aggregated hit count 4", got[0].Score)
	}
}

func TestLemmaSearchRejectsInnerSubstringOnlyExcerpts(t *testing.T) {
	mock, _, lemma, done := newMockDB(t)
	defer done()

	// The index claims a hit but the visible excerpt only carries the
	// root buried inside another word.
	hitRows := candidateRowsWithHits().
		AddRow("stale", "b1", "Kitap", "book_chunk", 2, 1,
			"Baskentin caddeleri kalabalikti.", nil, nil, []byte(`[]`), 2)

	mock.ExpectQuery("SELECT c.id, c.item_id").
		WillReturnRows(hitRows)

	got, err := lemma.Search(context.Background(), bookQuery("ask", "ask", []string{"ask"}), 10, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected stale index row dropped, got %d candidates", len(got))
	}
}

func TestLemmaSearchAcceptsDerivedForms(t *testing.T) {
	mock, _, lemma, done := newMockDB(t)
	defer done()

	hitRows := candidateRowsWithHits().
		AddRow("derived", "b1", "Kitap", "book_chunk", 2, 1,
			"Özgürlüğün anlamı üzerine bir deneme.", nil, nil, []byte(`[]`), 1)

	mock.ExpectQuery("SELECT c.id, c.item_id").
		WillReturnRows(hitRows)

	got, err := lemma.Search(context.Background(), bookQuery("özgür", "ozgur", []string{"ozgur"}), 10, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected derived form to survive verification, got %d", len(got))
	}
}

func TestLemmaSearchNoTokensShortCircuits(t *testing.T) {
	_, _, lemma, done := newMockDB(t)
	defer done()

	got, err := lemma.Search(context.Background(), bookQuery("", "", nil), 10, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got != nil {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

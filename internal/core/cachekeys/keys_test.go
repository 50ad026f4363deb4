package cachekeys

import (
	"path"
	"strings"
	"testing"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

func queryFor(userID string) domain.Query {
	return domain.Query{
		Normalized: "ozgurluk nedir",
		Scope: domain.Scope{
			UserID:       userID,
			ResourceType: domain.ResourceBook,
		},
	}
}

func requestFor(limit, offset int) domain.SearchRequest {
	return domain.SearchRequest{
		Limit:     limit,
		Offset:    offset,
		MixPolicy: domain.MixLexicalThenSemanticTail,
	}
}

func TestSearchKeyIsolatesUsers(t *testing.T) {
	a := SearchKey(1, queryFor("user-a"), requestFor(20, 0), "exact+lemma+semantic")
	b := SearchKey(1, queryFor("user-b"), requestFor(20, 0), "exact+lemma+semantic")
	if a == b {
		t.Fatalf("identical keys for different users: %s", a)
	}
}

func TestSearchKeyChangesWithVersionAndPaging(t *testing.T) {
	base := SearchKey(1, queryFor("u1"), requestFor(20, 0), "exact+lemma+semantic")
	if SearchKey(2, queryFor("u1"), requestFor(20, 0), "exact+lemma+semantic") == base {
		t.Fatalf("version bump did not change the key")
	}
	if SearchKey(1, queryFor("u1"), requestFor(20, 10), "exact+lemma+semantic") == base {
		t.Fatalf("offset change did not change the key")
	}
	if SearchKey(1, queryFor("u1"), requestFor(20, 0), "exact") == base {
		t.Fatalf("strategy set change did not change the key")
	}
}

func TestSearchKeyChangesWithResultShape(t *testing.T) {
	base := SearchKey(1, queryFor("u1"), requestFor(20, 0), "exact+lemma+semantic")

	concat := requestFor(20, 0)
	concat.MixPolicy = domain.MixBucketConcat
	if SearchKey(1, queryFor("u1"), concat, "exact+lemma+semantic") == base {
		t.Fatalf("mix policy change did not change the key")
	}

	capped := requestFor(20, 0)
	capped.SemanticTailCap = 3
	if SearchKey(1, queryFor("u1"), capped, "exact+lemma+semantic") == base {
		t.Fatalf("tail cap change did not change the key")
	}

	hinted := requestFor(20, 0)
	hinted.IntentHint = domain.IntentComparative
	if SearchKey(1, queryFor("u1"), hinted, "exact+lemma+semantic") == base {
		t.Fatalf("intent hint change did not change the key")
	}

	moded := requestFor(20, 0)
	moded.DefaultMode = domain.ModeFastExact
	if SearchKey(1, queryFor("u1"), moded, "exact+lemma+semantic") == base {
		t.Fatalf("default mode change did not change the key")
	}
}

func TestSearchKeyMatchesUserPattern(t *testing.T) {
	key := SearchKey(3, queryFor("u1"), requestFor(20, 0), "exact+lemma+semantic")
	if !strings.HasPrefix(key, "search:v3:u1:") {
		t.Fatalf("unexpected key shape: %s", key)
	}

	matched, err := path.Match(UserPattern("u1"), key)
	if err != nil || !matched {
		t.Fatalf("UserPattern(u1) does not match %s (err=%v)", key, err)
	}
	matched, _ = path.Match(UserPattern("u2"), key)
	if matched {
		t.Fatalf("UserPattern(u2) must not match u1 keys")
	}
}

func TestScopeFingerprintIgnoresTargetOrder(t *testing.T) {
	a := ScopeFingerprint(domain.Scope{UserID: "u1", TargetItemIDs: []string{"b1", "b2"}})
	b := ScopeFingerprint(domain.Scope{UserID: "u1", TargetItemIDs: []string{"b2", "b1"}})
	if a != b {
		t.Fatalf("fingerprint depends on target order: %s vs %s", a, b)
	}

	c := ScopeFingerprint(domain.Scope{UserID: "u1", TargetItemIDs: []string{"b1", "b3"}})
	if a == c {
		t.Fatalf("different target sets share a fingerprint")
	}
}

func TestExpansionKeyNormalizesQueryCase(t *testing.T) {
	a := ExpansionKey(1, "Özgürlük Nedir", 2)
	b := ExpansionKey(1, "özgürlük nedir", 2)
	if a != b {
		t.Fatalf("expansion key is case sensitive: %s vs %s", a, b)
	}
	if ExpansionKey(1, "özgürlük nedir", 3) == b {
		t.Fatalf("max variations must be part of the key")
	}
}

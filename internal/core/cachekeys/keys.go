// Package cachekeys builds the deterministic cache keys used by the
// retrieval engine. Keys embed the scope fingerprint so entries can never
// be read across two different user scopes, and a version segment so a
// policy bump invalidates all prior entries implicitly.
package cachekeys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kitaplik/reading-assistant/internal/core/domain"
)

const (
	searchService = "search"
	expandService = "expand"
)

// SearchKey derives the result-set cache key:
// search:v{version}:{user}:{hash}. Every request parameter that shapes the
// fused output — paging, mix policy, tail cap, intent hint, default mode —
// is part of the hashed payload, so differently shaped requests never share
// an entry. The user id is a plain segment so pattern invalidation per user
// stays possible.
func SearchKey(version int, q domain.Query, req domain.SearchRequest, strategySet string) string {
	fingerprint := ScopeFingerprint(q.Scope)
	payload := strings.Join([]string{
		q.Normalized,
		fingerprint,
		fmt.Sprintf("%d:%d", req.Limit, req.Offset),
		string(req.MixPolicy),
		strconv.Itoa(req.SemanticTailCap),
		string(req.IntentHint),
		string(req.DefaultMode),
		strategySet,
	}, "|")
	return fmt.Sprintf("%s:v%d:%s:%s", searchService, version, q.Scope.UserID, shortHash(payload))
}

// UserPattern matches every search entry belonging to one user, across all
// versions. The ingestion collaborator issues this after content changes.
func UserPattern(userID string) string {
	return fmt.Sprintf("%s:*:%s:*", searchService, userID)
}

// ExpansionKey derives the query-expansion cache key. Expansions are
// query-only, so no scope segment is included.
func ExpansionKey(version int, query string, maxVariations int) string {
	payload := fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(query)), maxVariations)
	return fmt.Sprintf("%s:v%d:%s", expandService, version, shortHash(payload))
}

// ScopeFingerprint hashes the caller's user/resource/target filters into a
// deterministic namespace component.
func ScopeFingerprint(scope domain.Scope) string {
	targets := append([]string(nil), scope.TargetItemIDs...)
	sort.Strings(targets)
	payload := strings.Join([]string{
		scope.UserID,
		string(scope.ResourceType),
		strings.Join(targets, ","),
		string(scope.CompareMode),
	}, "|")
	return shortHash(payload)
}

func shortHash(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])[:16]
}

// Package textnorm holds the normalization and boundary-matching rules
// shared by the routing heuristics and the store-backed strategies. All
// functions are pure.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccenter strips combining marks after NFD decomposition, so "özgürlük"
// and "ozgurluk" normalize to the same form.
var deaccenter = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText case-folds and deaccents text. Turkish dotless ı has no
// combining mark, so it is mapped explicitly after decomposition.
func NormalizeText(s string) string {
	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(deaccenter, lowered)
	if err != nil {
		stripped = lowered
	}
	mapped := strings.Map(func(r rune) rune {
		if r == 'ı' {
			return 'i'
		}
		return r
	}, stripped)
	return strings.Join(strings.Fields(mapped), " ")
}

// Tokenize splits normalized text into alphanumeric tokens.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// NormalizeAndTokenize is the common query preparation step.
func NormalizeAndTokenize(s string) (string, []string) {
	normalized := NormalizeText(s)
	return normalized, Tokenize(normalized)
}

// HasBoundaryMatch reports whether term occurs in text aligned with token
// boundaries on both sides. A hit that exists only inside a longer
// alphanumeric token does not count, so a short root never matches an
// unrelated longer word. Multi-word terms are matched as a phrase.
func HasBoundaryMatch(text, term string) bool {
	return CountBoundaryHits(text, term) > 0
}

// CountBoundaryHits counts boundary-aligned occurrences of term in text.
func CountBoundaryHits(text, term string) int {
	text = NormalizeText(text)
	term = strings.TrimSpace(NormalizeText(term))
	if term == "" || text == "" {
		return 0
	}

	chars := []rune(text)
	needle := []rune(term)
	hits := 0
	for start := 0; ; {
		idx := indexRunes(chars[start:], needle)
		if idx < 0 {
			return hits
		}
		idx += start
		if boundaryBefore(chars, idx) && boundaryAfter(chars, idx+len(needle)) {
			hits++
		}
		start = idx + 1
	}
}

// HasLemmaMatch reports whether any token of text begins with root. The
// root must sit at a token start; inner-substring-only occurrences are
// rejected just like in exact matching.
func HasLemmaMatch(text, root string) bool {
	root = strings.TrimSpace(NormalizeText(root))
	if root == "" {
		return false
	}
	for _, token := range Tokenize(NormalizeText(text)) {
		if strings.HasPrefix(token, root) {
			return true
		}
	}
	return false
}

func boundaryBefore(chars []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	return !isWordRune(chars[idx-1])
}

func boundaryAfter(chars []rune, end int) bool {
	if end >= len(chars) {
		return true
	}
	return !isWordRune(chars[end])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

package usecase

import (
	"github.com/kitaplik/reading-assistant/internal/core/domain"
	"github.com/kitaplik/reading-assistant/internal/core/textnorm"
)

// MarkerSet holds the linguistic patterns driving intent detection, compare
// planning and conceptual routing. The set is injectable because the
// phrasing is locale-specific; defaults target Turkish.
type MarkerSet struct {
	// Compare marks explicit contrastive phrasing ("karşılaştır", "farkı").
	Compare []string
	// PersonalNotes marks questions about the reader's own annotations.
	PersonalNotes []string
	// Conceptual is the needs-definition hint set for single-root queries.
	Conceptual []string
	// Analytic marks statistics/metadata questions about the library itself.
	Analytic []string
	// FollowUp marks references back to a previous answer.
	FollowUp []string
	// Narrative marks plot/character questions.
	Narrative []string
	// Societal marks questions about social or historical context.
	Societal []string
}

// DefaultMarkers is the Turkish marker set used when no custom set is injected.
func DefaultMarkers() MarkerSet {
	return MarkerSet{
		Compare: []string{
			"karsilastir", "kiyasla", "farki", "farklari", "arasindaki fark",
			"hangisi daha", "benzerlik", "ortak yonleri", "oysa", "halbuki",
		},
		PersonalNotes: []string{
			"notlarim", "aldigim notlar", "kendi notlarim", "alintilarim", "isaretledigim",
		},
		Conceptual: []string{
			"ask", "ozgurluk", "adalet", "ahlak", "varolus", "bilinc",
			"erdem", "iktidar", "yabancilasma", "olum", "mutluluk", "vicdan",
		},
		Analytic: []string{
			"kac kitap", "kac sayfa", "ne kadar okudum", "istatistik", "en cok",
		},
		FollowUp: []string{
			"peki", "bir onceki", "az once", "demin", "devam et", "baska ornek",
		},
		Narrative: []string{
			"karakter", "olay orgusu", "hikayede", "romanda ne oluyor", "sonunda ne",
		},
		Societal: []string{
			"toplum", "toplumsal", "donemin", "tarihsel baglam", "siyasi",
		},
	}
}

// MatchesCompare reports whether normalized question text contains an
// explicit contrastive connective.
func (m MarkerSet) MatchesCompare(normalized string) bool {
	return containsAnyMarker(normalized, m.Compare)
}

// MatchesPersonalNotes reports whether the question targets the reader's
// own annotations.
func (m MarkerSet) MatchesPersonalNotes(normalized string) bool {
	return containsAnyMarker(normalized, m.PersonalNotes)
}

// IsConceptualRoot reports whether a single-token query root is in the
// needs-definition hint set.
func (m MarkerSet) IsConceptualRoot(token string) bool {
	for _, hint := range m.Conceptual {
		if token == hint {
			return true
		}
	}
	return false
}

// DetectIntent classifies a question by marker sets. Used only when the
// caller supplies no intent hint; the rules are deliberately shallow
// because the web layer usually knows the intent already.
func (m MarkerSet) DetectIntent(question string) domain.Intent {
	normalized := textnorm.NormalizeText(question)
	switch {
	case containsAnyMarker(normalized, m.Analytic):
		return domain.IntentAnalytic
	case containsAnyMarker(normalized, m.Compare):
		return domain.IntentComparative
	case containsAnyMarker(normalized, m.FollowUp):
		return domain.IntentFollowUp
	case containsAnyMarker(normalized, m.Narrative):
		return domain.IntentNarrative
	case containsAnyMarker(normalized, m.Societal):
		return domain.IntentSocietal
	}
	tokens := textnorm.Tokenize(normalized)
	if len(tokens) == 1 && m.IsConceptualRoot(tokens[0]) {
		return domain.IntentExploratory
	}
	if len(tokens) <= 3 {
		return domain.IntentDirect
	}
	return domain.IntentSynthesis
}

func containsAnyMarker(normalized string, markers []string) bool {
	for _, marker := range markers {
		if marker == "" {
			continue
		}
		if textnorm.HasBoundaryMatch(normalized, marker) {
			return true
		}
	}
	return false
}

package textnorm

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "KİTAP", "kitap"},
		{"strips diacritics", "özgürlük", "ozgurluk"},
		{"maps dotless i", "aşk kadın ırmak", "ask kadin irmak"},
		{"collapses whitespace", "  iki   kelime \t arasi ", "iki kelime arasi"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Fatalf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("ask, ve ozgurluk! 1984")
	want := []string{"ask", "ve", "ozgurluk", "1984"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize() = %v, want %v", got, want)
	}
}

func TestHasBoundaryMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want bool
	}{
		{"standalone token", "ask her seyi degistirir", "ask", true},
		{"inner substring rejected", "baskentin sokaklari", "ask", false},
		{"start of text", "ask geldi", "ask", true},
		{"end of text", "sonunda ask", "ask", true},
		{"punctuation boundary", "ask, dedi", "ask", true},
		{"diacritic folded", "Aşk her şeyi değiştirir", "ask", true},
		{"multi word phrase", "arasindaki fark nedir", "arasindaki fark", true},
		{"phrase broken by token", "arasindaki buyuk fark", "arasindaki fark", false},
		{"empty term", "metin", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasBoundaryMatch(tt.text, tt.term); got != tt.want {
				t.Fatalf("HasBoundaryMatch(%q, %q) = %v, want %v", tt.text, tt.term, got, tt.want)
			}
		})
	}
}

func TestCountBoundaryHits(t *testing.T) {
	if got := CountBoundaryHits("ask baslar, ask biter, ask kalir", "ask"); got != 3 {
		t.Fatalf("CountBoundaryHits() = %d, want 3", got)
	}
	if got := CountBoundaryHits("baskentin maskesi", "ask"); got != 0 {
		t.Fatalf("CountBoundaryHits() = %d, want 0 for inner substrings", got)
	}
}

func TestHasLemmaMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
		root string
		want bool
	}{
		{"exact token", "ozgurluk onemli", "ozgurluk", true},
		{"derived suffix form", "özgürlüğün bedeli", "ozgur", true},
		{"root not at token start", "baskentin caddeleri", "ask", false},
		{"absent", "deniz ve gokyuzu", "ozgur", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasLemmaMatch(tt.text, tt.root); got != tt.want {
				t.Fatalf("HasLemmaMatch(%q, %q) = %v, want %v", tt.text, tt.root, got, tt.want)
			}
		})
	}
}

package relevance

import (
	"sort"
	"strings"
	"testing"
)

func TestTokenizeLowercasesAndSplits(t *testing.T) {
	tokens := Tokenize("Annual Report 2023")
	want := []string{"2023", "annual", "report"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %v", len(want), tokens)
	}
	for _, token := range want {
		if _, ok := tokens[token]; !ok {
			t.Fatalf("expected token %q in %v", token, tokens)
		}
	}
}

func TestTokenizeEmptyAndWhitespace(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n  "} {
		if tokens := Tokenize(input); len(tokens) != 0 {
			t.Fatalf("Tokenize(%q) expected empty set, got %v", input, tokens)
		}
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	first := Tokenize("The  Quick\tBrown Fox the")

	joined := make([]string, 0, len(first))
	for token := range first {
		joined = append(joined, token)
	}
	sort.Strings(joined)

	second := Tokenize(strings.Join(joined, " "))
	if len(second) != len(first) {
		t.Fatalf("expected %d tokens after round trip, got %d", len(first), len(second))
	}
	for token := range first {
		if _, ok := second[token]; !ok {
			t.Fatalf("token %q lost in round trip", token)
		}
	}
}

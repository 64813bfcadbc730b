package relevance

import "strings"

// Tokenize lower-cases the input and splits it on whitespace into a token
// set. Empty or whitespace-only input yields an empty set. The operation is
// idempotent: tokenizing a re-joined token set yields the same set.
func Tokenize(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}

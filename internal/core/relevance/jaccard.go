package relevance

// JaccardScorer computes lexical overlap between the query and a document's
// text signal: |intersection| / |union| over whitespace token sets. The
// empty-union case (both inputs tokenize to nothing) is defined as 0.
type JaccardScorer struct{}

func NewJaccardScorer() JaccardScorer {
	return JaccardScorer{}
}

func (JaccardScorer) Score(queryText, documentText string) float64 {
	query := Tokenize(queryText)
	doc := Tokenize(documentText)

	intersection := 0
	for token := range query {
		if _, ok := doc[token]; ok {
			intersection++
		}
	}

	union := len(query) + len(doc) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
	"github.com/kirillkom/rag-document-qa/internal/core/ports"
)

// DefaultMaxResults bounds retrieval when the caller does not specify a
// result count.
const DefaultMaxResults = 5

// Retriever ranks the current catalog against a query. It is read-only and
// fail-open: a failed catalog scan degrades to zero matches instead of
// failing the query.
type Retriever struct {
	catalog ports.MetadataStore
	scorer  ports.RelevanceScorer
}

func NewRetriever(catalog ports.MetadataStore, scorer ports.RelevanceScorer) *Retriever {
	return &Retriever{
		catalog: catalog,
		scorer:  scorer,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, queryText string, maxResults int) []domain.RankedDocument {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	docs, err := r.catalog.ScanAll(ctx)
	if err != nil {
		slog.Error("catalog scan failed, degrading to zero matches", "error", err)
		return []domain.RankedDocument{}
	}

	ranked := make([]domain.RankedDocument, 0, len(docs))
	for _, doc := range docs {
		score := r.scorer.Score(queryText, doc.Name)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, domain.RankedDocument{
			DocumentID:     doc.ID,
			Name:           doc.Name,
			RelevanceScore: score,
			Excerpt:        fmt.Sprintf("Relevant content from %s related to: %s", doc.Name, queryText),
		})
	}

	// Descending by score; equal scores order by document id so ranking is
	// deterministic regardless of scan order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RelevanceScore != ranked[j].RelevanceScore {
			return ranked[i].RelevanceScore > ranked[j].RelevanceScore
		}
		return ranked[i].DocumentID < ranked[j].DocumentID
	})

	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	return ranked
}

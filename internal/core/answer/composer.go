package answer

import (
	"fmt"
	"strings"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
)

const (
	maxListedNames   = 3
	maxJoinedExcerpts = 2
)

// TemplateComposer renders a deterministic answer from ranked results. It
// stands in for generative synthesis behind ports.AnswerComposer.
type TemplateComposer struct{}

func NewTemplateComposer() TemplateComposer {
	return TemplateComposer{}
}

func (TemplateComposer) Compose(queryText string, ranked []domain.RankedDocument) string {
	if len(ranked) == 0 {
		return fmt.Sprintf(
			"I couldn't find any relevant documents to answer your query: '%s'. "+
				"Please try rephrasing your question or upload relevant documents first.",
			queryText,
		)
	}

	names := make([]string, 0, maxListedNames)
	for _, doc := range ranked {
		if len(names) == maxListedNames {
			break
		}
		names = append(names, doc.Name)
	}

	excerpts := make([]string, 0, maxJoinedExcerpts)
	for _, doc := range ranked {
		if len(excerpts) == maxJoinedExcerpts {
			break
		}
		excerpts = append(excerpts, doc.Excerpt)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on your query '%s', I found relevant information in the following documents: %s. ",
		queryText, strings.Join(names, ", "))
	fmt.Fprintf(&b, "The most relevant document appears to be '%s' with a relevance score of %.2f. ",
		ranked[0].Name, ranked[0].RelevanceScore)
	b.WriteString("Here's a summary of the relevant information: ")
	b.WriteString(strings.Join(excerpts, " "))
	return b.String()
}

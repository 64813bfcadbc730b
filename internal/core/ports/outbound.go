package ports

import (
	"context"
	"io"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
)

// MetadataStore is the document catalog. ScanAll is a full scan; no cursor
// is retained across calls, so every retrieval sees the current catalog.
type MetadataStore interface {
	Put(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ScanAll(ctx context.Context) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// BlobStore stores raw document content. The query pipeline never touches it.
type BlobStore interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// HistoryStore is append-only query history. Scan order is whatever the
// store yields; callers that care about recency sort the fetched page.
type HistoryStore interface {
	Append(ctx context.Context, record domain.QueryRecord) error
	Scan(ctx context.Context, limit int) ([]domain.QueryRecord, error)
}

// MessageQueue publishes/consumes document lifecycle events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// RelevanceScorer scores a document text signal against a query. Implementations
// must be pure and return values in [0,1]; a future embedding-based scorer
// replaces the lexical one behind this interface.
type RelevanceScorer interface {
	Score(queryText, documentText string) float64
}

// AnswerComposer builds the user-facing answer from ranked results. The
// templated composer is a placeholder for generative synthesis.
type AnswerComposer interface {
	Compose(queryText string, ranked []domain.RankedDocument) string
}

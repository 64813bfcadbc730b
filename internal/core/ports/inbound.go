package ports

import (
	"context"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
)

// QueryService is the inbound contract for the question-answering pipeline.
type QueryService interface {
	HandleQuery(ctx context.Context, queryText string, maxResults int) (*domain.QueryResult, error)
	ListHistory(ctx context.Context, limit int) ([]domain.QueryRecord, error)
}

// DocumentService is the inbound contract for document management.
type DocumentService interface {
	Upload(ctx context.Context, name, contentType string, content []byte) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
}

// DocumentProcessor is the inbound contract for asynchronous post-upload
// processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

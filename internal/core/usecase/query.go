package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
	"github.com/kirillkom/rag-document-qa/internal/core/ports"
)

// DefaultHistoryLimit bounds history listing when the caller does not
// specify one.
const DefaultHistoryLimit = 10

// QueryUseCase sequences the question-answering pipeline:
// retrieve, compose, record. Recording is best effort and never alters the
// returned payload.
type QueryUseCase struct {
	retriever *Retriever
	composer  ports.AnswerComposer
	history   ports.HistoryStore
}

func NewQueryUseCase(
	retriever *Retriever,
	composer ports.AnswerComposer,
	history ports.HistoryStore,
) *QueryUseCase {
	return &QueryUseCase{
		retriever: retriever,
		composer:  composer,
		history:   history,
	}
}

func (uc *QueryUseCase) HandleQuery(ctx context.Context, queryText string, maxResults int) (*domain.QueryResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "handle query", errors.New("query text is required"))
	}

	queryID := uuid.NewString()
	ranked := uc.retriever.Retrieve(ctx, queryText, maxResults)
	responseText := uc.composer.Compose(queryText, ranked)
	now := time.Now().UTC()

	record := domain.QueryRecord{
		QueryID:           queryID,
		QueryText:         queryText,
		ResponseText:      responseText,
		RelevantDocuments: ranked,
		Timestamp:         now,
		DocumentCount:     len(ranked),
	}
	if err := uc.history.Append(ctx, record); err != nil {
		// Best effort: an unrecorded query must not fail the response.
		slog.Error("append query history failed", "query_id", queryID, "error", err)
	}

	return &domain.QueryResult{
		QueryID:           queryID,
		QueryText:         queryText,
		ResponseText:      responseText,
		RelevantDocuments: ranked,
		Timestamp:         now,
	}, nil
}

// ListHistory reads up to limit records in the store's native scan order and
// sorts the fetched page by timestamp descending. The sort is page-local,
// not a global top-K: if the store's scan is not chronological the page may
// omit globally newer records. That matches the store contract and is
// deliberate.
func (uc *QueryUseCase) ListHistory(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	records, err := uc.history.Scan(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("scan query history: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].QueryID < records[j].QueryID
	})
	return records, nil
}

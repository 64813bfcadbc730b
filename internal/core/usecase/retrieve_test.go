package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
	"github.com/kirillkom/rag-document-qa/internal/core/relevance"
)

type catalogFake struct {
	docs    []domain.Document
	scanErr error
}

func (f *catalogFake) Put(context.Context, *domain.Document) error { return nil }
func (f *catalogFake) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrDocumentNotFound
}
func (f *catalogFake) ScanAll(context.Context) ([]domain.Document, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.docs, nil
}
func (f *catalogFake) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return nil
}
func (f *catalogFake) Delete(context.Context, string) error { return nil }

func sampleCatalog() *catalogFake {
	return &catalogFake{docs: []domain.Document{
		{ID: "doc-1", Name: "Annual Report 2023"},
		{ID: "doc-2", Name: "Employee Handbook"},
		{ID: "doc-3", Name: "Annual Budget Plan"},
	}}
}

func TestRetrieveRanksByJaccardScore(t *testing.T) {
	r := NewRetriever(sampleCatalog(), relevance.NewJaccardScorer())

	ranked := r.Retrieve(context.Background(), "annual report", 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}

	if ranked[0].Name != "Annual Report 2023" || math.Abs(ranked[0].RelevanceScore-2.0/3.0) > 1e-9 {
		t.Fatalf("unexpected top result: %+v", ranked[0])
	}
	if ranked[1].Name != "Annual Budget Plan" || math.Abs(ranked[1].RelevanceScore-0.2) > 1e-9 {
		t.Fatalf("unexpected second result: %+v", ranked[1])
	}
}

func TestRetrieveExcludesZeroScores(t *testing.T) {
	r := NewRetriever(sampleCatalog(), relevance.NewJaccardScorer())

	ranked := r.Retrieve(context.Background(), "annual report", 10)
	for _, doc := range ranked {
		if doc.RelevanceScore <= 0 {
			t.Fatalf("result with non-positive score: %+v", doc)
		}
		if doc.Name == "Employee Handbook" {
			t.Fatalf("non-matching document returned: %+v", doc)
		}
	}
}

func TestRetrieveDefaultsAndCapsMaxResults(t *testing.T) {
	catalog := &catalogFake{}
	for i := 0; i < 9; i++ {
		catalog.docs = append(catalog.docs, domain.Document{
			ID:   string(rune('a' + i)),
			Name: "annual report",
		})
	}
	r := NewRetriever(catalog, relevance.NewJaccardScorer())

	if got := r.Retrieve(context.Background(), "annual report", 0); len(got) != DefaultMaxResults {
		t.Fatalf("expected default cap %d, got %d", DefaultMaxResults, len(got))
	}
	if got := r.Retrieve(context.Background(), "annual report", 3); len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
}

func TestRetrieveTieBreaksByDocumentID(t *testing.T) {
	catalog := &catalogFake{docs: []domain.Document{
		{ID: "doc-9", Name: "annual report"},
		{ID: "doc-1", Name: "annual report"},
		{ID: "doc-5", Name: "annual report"},
	}}
	r := NewRetriever(catalog, relevance.NewJaccardScorer())

	ranked := r.Retrieve(context.Background(), "annual report", 5)
	want := []string{"doc-1", "doc-5", "doc-9"}
	if len(ranked) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(ranked))
	}
	for i, id := range want {
		if ranked[i].DocumentID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ranked[i].DocumentID)
		}
	}
}

func TestRetrieveEmptyCatalogReturnsEmpty(t *testing.T) {
	r := NewRetriever(&catalogFake{}, relevance.NewJaccardScorer())
	if got := r.Retrieve(context.Background(), "anything", 5); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestRetrieveScanFailureDegradesToEmpty(t *testing.T) {
	r := NewRetriever(&catalogFake{scanErr: errors.New("store down")}, relevance.NewJaccardScorer())
	got := r.Retrieve(context.Background(), "annual report", 5)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result on scan failure, got %v", got)
	}
}

func TestRetrieveExcerptTemplate(t *testing.T) {
	r := NewRetriever(sampleCatalog(), relevance.NewJaccardScorer())
	ranked := r.Retrieve(context.Background(), "annual report", 1)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 result, got %d", len(ranked))
	}
	want := "Relevant content from Annual Report 2023 related to: annual report"
	if ranked[0].Excerpt != want {
		t.Fatalf("excerpt = %q, want %q", ranked[0].Excerpt, want)
	}
}

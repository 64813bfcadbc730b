package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
)

type blobFake struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
	openErr error
}

func newBlobFake() *blobFake {
	return &blobFake{saved: make(map[string][]byte)}
}

func (f *blobFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = raw
	return nil
}

func (f *blobFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	raw, ok := f.saved[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *blobFake) Delete(_ context.Context, key string) error {
	delete(f.saved, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type recordingCatalog struct {
	catalogFake
	put     []domain.Document
	deleted []string
	byID    map[string]*domain.Document
	putErr  error
}

func (f *recordingCatalog) Put(_ context.Context, doc *domain.Document) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.put = append(f.put, *doc)
	return nil
}

func (f *recordingCatalog) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id="+id))
	}
	return doc, nil
}

func (f *recordingCatalog) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type queueFake struct {
	published  []string
	publishErr error
}

func (f *queueFake) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *queueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadStoresBlobMetadataAndPublishes(t *testing.T) {
	catalog := &recordingCatalog{}
	blobs := newBlobFake()
	queue := &queueFake{}
	uc := NewDocumentUseCase(catalog, blobs, queue)

	doc, err := uc.Upload(context.Background(), "Annual Report 2023", "text", []byte("hello world"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if doc.ID == "" || doc.Status != domain.StatusUploaded {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.ContentLength != int64(len("hello world")) {
		t.Fatalf("content length = %d", doc.ContentLength)
	}
	if !strings.HasPrefix(doc.StorageKey, "documents/"+doc.ID+"/") {
		t.Fatalf("unexpected storage key %q", doc.StorageKey)
	}
	if _, ok := blobs.saved[doc.StorageKey]; !ok {
		t.Fatalf("blob not saved under %q", doc.StorageKey)
	}
	if len(catalog.put) != 1 || catalog.put[0].ID != doc.ID {
		t.Fatalf("metadata not stored: %+v", catalog.put)
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("uploaded event not published: %v", queue.published)
	}
}

func TestUploadValidatesNameAndContent(t *testing.T) {
	uc := NewDocumentUseCase(&recordingCatalog{}, newBlobFake(), &queueFake{})

	if _, err := uc.Upload(context.Background(), "", "text", []byte("x")); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := uc.Upload(context.Background(), "doc.txt", "text", nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty content, got %v", err)
	}
}

func TestUploadPublishFailurePropagates(t *testing.T) {
	uc := NewDocumentUseCase(&recordingCatalog{}, newBlobFake(), &queueFake{publishErr: errors.New("nats down")})
	if _, err := uc.Upload(context.Background(), "doc.txt", "text", []byte("x")); err == nil {
		t.Fatalf("expected error when event publish fails")
	}
}

func TestDeleteRemovesBlobThenMetadata(t *testing.T) {
	catalog := &recordingCatalog{byID: map[string]*domain.Document{
		"doc-1": {ID: "doc-1", StorageKey: "documents/doc-1/report.txt"},
	}}
	blobs := newBlobFake()
	blobs.saved["documents/doc-1/report.txt"] = []byte("x")
	uc := NewDocumentUseCase(catalog, blobs, &queueFake{})

	if err := uc.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "documents/doc-1/report.txt" {
		t.Fatalf("blob not deleted: %v", blobs.deleted)
	}
	if len(catalog.deleted) != 1 || catalog.deleted[0] != "doc-1" {
		t.Fatalf("metadata not deleted: %v", catalog.deleted)
	}
}

func TestDeleteMissingDocumentReturnsNotFound(t *testing.T) {
	uc := NewDocumentUseCase(&recordingCatalog{}, newBlobFake(), &queueFake{})
	err := uc.Delete(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Annual Report 2023.pdf": "Annual_Report_2023.pdf",
		"../../etc/passwd":       "passwd",
		"":                       "document.bin",
		"résumé.txt":             "r_sum_.txt",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
	"github.com/kirillkom/rag-document-qa/internal/core/ports"
)

// DocumentUseCase owns document upload, listing and deletion. The query
// pipeline never goes through it.
type DocumentUseCase struct {
	catalog ports.MetadataStore
	blobs   ports.BlobStore
	queue   ports.MessageQueue
}

func NewDocumentUseCase(
	catalog ports.MetadataStore,
	blobs ports.BlobStore,
	queue ports.MessageQueue,
) *DocumentUseCase {
	return &DocumentUseCase{
		catalog: catalog,
		blobs:   blobs,
		queue:   queue,
	}
}

func (uc *DocumentUseCase) Upload(ctx context.Context, name, contentType string, content []byte) (*domain.Document, error) {
	if strings.TrimSpace(name) == "" || len(content) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("document name and content are required"))
	}
	if contentType == "" {
		contentType = "text"
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("documents/%s/%s", id, sanitizeFilename(name))

	if err := uc.blobs.Save(ctx, storageKey, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("save document content: %w", err)
	}

	doc := &domain.Document{
		ID:            id,
		Name:          name,
		Type:          contentType,
		StorageKey:    storageKey,
		UploadTime:    time.Now().UTC(),
		Status:        domain.StatusUploaded,
		ContentLength: int64(len(content)),
	}
	if err := uc.catalog.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("put document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish uploaded event: %w", err)
	}
	return doc, nil
}

func (uc *DocumentUseCase) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := uc.catalog.ScanAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan document catalog: %w", err)
	}
	return docs, nil
}

func (uc *DocumentUseCase) Get(ctx context.Context, id string) (*domain.Document, error) {
	return uc.catalog.GetByID(ctx, id)
}

func (uc *DocumentUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.blobs.Delete(ctx, doc.StorageKey); err != nil {
		return fmt.Errorf("delete document content: %w", err)
	}
	if err := uc.catalog.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}

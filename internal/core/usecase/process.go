package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
	"github.com/kirillkom/rag-document-qa/internal/core/ports"
)

// ProcessDocumentUseCase is the post-upload stage run by the worker. It
// verifies the stored blob is readable and its length matches the catalog
// record, then marks the document ready. Retrieval does not depend on this
// transition.
type ProcessDocumentUseCase struct {
	catalog ports.MetadataStore
	blobs   ports.BlobStore
}

func NewProcessDocumentUseCase(catalog ports.MetadataStore, blobs ports.BlobStore) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		catalog: catalog,
		blobs:   blobs,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.catalog.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", documentID, err)
	}

	size, err := uc.verifyBlob(ctx, doc.StorageKey)
	if err != nil {
		if markErr := uc.catalog.UpdateStatus(ctx, doc.ID, domain.StatusFailed, err.Error()); markErr != nil {
			return fmt.Errorf("mark document failed: %w (verify error: %v)", markErr, err)
		}
		return fmt.Errorf("verify document %s: %w", documentID, err)
	}
	if size != doc.ContentLength {
		err := fmt.Errorf("stored content is %d bytes, catalog records %d", size, doc.ContentLength)
		if markErr := uc.catalog.UpdateStatus(ctx, doc.ID, domain.StatusFailed, err.Error()); markErr != nil {
			return fmt.Errorf("mark document failed: %w (length error: %v)", markErr, err)
		}
		return err
	}

	if err := uc.catalog.UpdateStatus(ctx, doc.ID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("mark document ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) verifyBlob(ctx context.Context, key string) (int64, error) {
	rc, err := uc.blobs.Open(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("open blob: %w", err)
	}
	defer rc.Close()

	size, err := io.Copy(io.Discard, rc)
	if err != nil {
		return 0, fmt.Errorf("read blob: %w", err)
	}
	return size, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
)

// MetadataRepository is the document catalog on PostgreSQL.
type MetadataRepository struct {
	db *sql.DB
}

func NewMetadataRepository(db *sql.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *MetadataRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	document_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	storage_key TEXT NOT NULL,
	upload_time TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL,
	content_length BIGINT NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_documents_upload_time ON documents(upload_time DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *MetadataRepository) Put(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	document_id, name, content_type, storage_key, upload_time, status, content_length, error_message
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		doc.ID, doc.Name, doc.Type, doc.StorageKey, doc.UploadTime,
		string(doc.Status), doc.ContentLength, doc.Error,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *MetadataRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT document_id, name, content_type, storage_key, upload_time, status, content_length, error_message
FROM documents
WHERE document_id = $1
`, id)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

// ScanAll reads the whole catalog. No ORDER BY on purpose: scan order is the
// store's business and callers rank or sort on their own terms.
func (r *MetadataRepository) ScanAll(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document_id, name, content_type, storage_key, upload_time, status, content_length, error_message
FROM documents
`)
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *MetadataRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3
WHERE document_id = $1
`, id, string(status), errMessage)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document status", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *MetadataRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE document_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "delete document", fmt.Errorf("id=%s", id))
	}
	return nil
}

func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var doc domain.Document
	var status string

	err := scan(
		&doc.ID, &doc.Name, &doc.Type, &doc.StorageKey,
		&doc.UploadTime, &status, &doc.ContentLength, &doc.Error,
	)
	if err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

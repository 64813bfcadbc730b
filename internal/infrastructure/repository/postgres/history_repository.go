package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
)

// HistoryRepository is the append-only query history on PostgreSQL.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052102)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS query_history (
	query_id TEXT PRIMARY KEY,
	query_text TEXT NOT NULL,
	response_text TEXT NOT NULL,
	relevant_documents JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	document_count INT NOT NULL DEFAULT 0
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Append(ctx context.Context, record domain.QueryRecord) error {
	docsJSON, err := json.Marshal(record.RelevantDocuments)
	if err != nil {
		return fmt.Errorf("marshal relevant documents: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO query_history (
	query_id, query_text, response_text, relevant_documents, created_at, document_count
) VALUES ($1,$2,$3,$4,$5,$6)
`,
		record.QueryID, record.QueryText, record.ResponseText, docsJSON,
		record.Timestamp, record.DocumentCount,
	)
	if err != nil {
		return fmt.Errorf("insert query record: %w", err)
	}
	return nil
}

// Scan reads up to limit records. No ORDER BY on purpose: the contract is a
// store-native page, not the most recent records; the use case sorts the
// fetched page. Adding ORDER BY created_at DESC here would silently upgrade
// the listing to a global top-K.
func (r *HistoryRepository) Scan(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT query_id, query_text, response_text, relevant_documents, created_at, document_count
FROM query_history
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("scan query history: %w", err)
	}
	defer rows.Close()

	var records []domain.QueryRecord
	for rows.Next() {
		var record domain.QueryRecord
		var docsRaw []byte

		err := rows.Scan(
			&record.QueryID, &record.QueryText, &record.ResponseText,
			&docsRaw, &record.Timestamp, &record.DocumentCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan query record: %w", err)
		}
		if err := json.Unmarshal(docsRaw, &record.RelevantDocuments); err != nil {
			return nil, fmt.Errorf("unmarshal relevant documents: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate query history: %w", err)
	}
	return records, nil
}

package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded DocumentStatus = "uploaded"
	StatusReady    DocumentStatus = "ready"
	StatusFailed   DocumentStatus = "failed"
)

// Document is one catalog entry. The query pipeline only ever reads it;
// creation and deletion belong to the document management handlers.
type Document struct {
	ID            string         `json:"document_id"`
	Name          string         `json:"name"`
	Type          string         `json:"type"`
	StorageKey    string         `json:"storage_key"`
	UploadTime    time.Time      `json:"upload_time"`
	Status        DocumentStatus `json:"status"`
	ContentLength int64          `json:"content_length"`
	Error         string         `json:"error,omitempty"`
}

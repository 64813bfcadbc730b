package domain

import "time"

// RankedDocument is a transient per-query result. It is never persisted on
// its own, only embedded in a QueryRecord snapshot.
type RankedDocument struct {
	DocumentID     string  `json:"document_id"`
	Name           string  `json:"name"`
	RelevanceScore float64 `json:"relevance_score"`
	Excerpt        string  `json:"excerpt"`
}

// QueryRecord is one durable unit of query history. Once appended it is
// never updated or deleted.
type QueryRecord struct {
	QueryID           string           `json:"query_id"`
	QueryText         string           `json:"query_text"`
	ResponseText      string           `json:"response_text"`
	RelevantDocuments []RankedDocument `json:"relevant_documents"`
	Timestamp         time.Time        `json:"timestamp"`
	DocumentCount     int              `json:"document_count"`
}

// QueryResult is the pipeline's response payload.
type QueryResult struct {
	QueryID           string           `json:"query_id"`
	QueryText         string           `json:"query"`
	ResponseText      string           `json:"response"`
	RelevantDocuments []RankedDocument `json:"relevant_documents"`
	Timestamp         time.Time        `json:"timestamp"`
}

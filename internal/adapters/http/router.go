package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/rag-document-qa/internal/config"
	"github.com/kirillkom/rag-document-qa/internal/core/ports"
	"github.com/kirillkom/rag-document-qa/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg       config.Config
	queries   ports.QueryService
	documents ports.DocumentService
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	queries ports.QueryService,
	documents ports.DocumentService,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		queries:   queries,
		documents: documents,
		metrics:   serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.documentsCollection)
	mux.HandleFunc("/v1/documents/", rt.documentByID)
	mux.HandleFunc("/v1/query", rt.handleQuery)
	mux.HandleFunc("/v1/query/history", rt.queryHistory)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	if rt.cfg.APIMaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 50*time.Millisecond)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = rt.cfg.QueryMaxResults
	}

	start := time.Now()
	result, err := rt.queries.HandleQuery(r.Context(), req.Query, req.MaxResults)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordQueryObservation(serviceName, len(result.RelevantDocuments), time.Since(start))
	}

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) queryHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := rt.cfg.HistoryDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := rt.queries.ListHistory(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"queries": records,
		"count":   len(records),
	})
}

func (rt *Router) documentsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Content string `json:"content"`
		Type    string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	doc, err := rt.documents.Upload(r.Context(), req.Name, req.Type, []byte(req.Content))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"document_id": doc.ID,
		"message":     "Document uploaded successfully",
		"storage_key": doc.StorageKey,
	})
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.documents.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"count":     len(docs),
	})
}

func (rt *Router) documentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := rt.documents.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := rt.documents.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

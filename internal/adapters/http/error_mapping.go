package httpadapter

import (
	"net/http"

	"github.com/kirillkom/rag-document-qa/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

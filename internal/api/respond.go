/**
 * @description
 * This file contains the shared response helpers for the HTTP layer: JSON
 * writing and the mapping from domain error kinds to HTTP status codes.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/practpec/api-voyaj-sub001/internal/domain"
)

// writeJSON is a helper for writing JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps a domain error kind to its HTTP status. Unknown
// errors become a logged 500 with a generic message.
func writeDomainError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidation:
			writeError(w, http.StatusBadRequest, de.Message)
		case domain.KindNotFound:
			writeError(w, http.StatusNotFound, de.Message)
		case domain.KindForbidden:
			writeError(w, http.StatusForbidden, de.Message)
		case domain.KindBusinessRule:
			writeError(w, http.StatusConflict, de.Message)
		default:
			writeError(w, http.StatusInternalServerError, de.Message)
		}
		return
	}

	log.Printf("level=error component=api msg=\"unhandled error\" err=%v", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

package handler

import (
	"encoding/json"
	"net/http"

	"rev-saas-api/internal/apperr"
)

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeCoreError maps the core's typed apperr.Error kinds onto HTTP status
// codes. An error that isn't an *apperr.Error is treated as an
// infrastructure failure.
func writeCoreError(w http.ResponseWriter, err error) {
	kind, ok := apperr.KindOf(err)
	if !ok {
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	switch kind {
	case apperr.KindInvalidMetrics, apperr.KindWindowInvalid:
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case apperr.KindWindowTooWide:
		writeJSONError(w, err.Error(), http.StatusRequestTimeout)
	case apperr.KindPersistenceUnavailable:
		writeJSONError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}

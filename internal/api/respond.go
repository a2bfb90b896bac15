// Package api provides the HTTP handlers for the hate-2-action service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gumanista/hate-2-action/internal/embeddings"
	"github.com/gumanista/hate-2-action/internal/extract"
	"github.com/gumanista/hate-2-action/internal/llm"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

// writeClassifiedError maps pipeline error classes to HTTP statuses:
// 422 for malformed model output, 502 for an unreachable upstream, 500
// for missing credentials.
func writeClassifiedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, extract.ErrMalformed):
		writeError(w, http.StatusUnprocessableEntity, "MALFORMED_OUTPUT", err.Error())
	case errors.Is(err, llm.ErrUnavailable), errors.Is(err, embeddings.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", err.Error())
	case errors.Is(err, llm.ErrMissingAPIKey), errors.Is(err, embeddings.ErrMissingAPIKey):
		writeError(w, http.StatusInternalServerError, "CONFIGURATION_ERROR", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

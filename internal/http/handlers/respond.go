package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	requestsvc "reqdesk/internal/services/request"
)

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the closed error vocabulary onto HTTP status codes.
// Anything unrecognized collapses to an unknown error with no detail.
func writeError(w http.ResponseWriter, err error) {
	var invalid *requestsvc.InvalidInputError
	var notFound *requestsvc.NotFoundError

	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: invalid.Msg})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: "request not found"})
	default:
		log.Warn().Err(err).Msg("request operation failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "unknown error"})
	}
}

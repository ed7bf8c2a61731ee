package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/avieira/tourbase-be/internal/apperrors"
)

// writeJSON writes v inside the standard success envelope.
func writeJSON(w http.ResponseWriter, status int, v map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{"status": "success"}
	for k, val := range v {
		body[k] = val
	}
	json.NewEncoder(w).Encode(body)
}

// writeError renders operational errors with their status classification.
// Anything unexpected becomes a generic 500 so internal detail never leaks.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		apperrors.Write(w, appErr)
		return
	}
	log.Error().Err(err).Msg("Unexpected error")
	apperrors.Write(w, apperrors.Internal("Something went very wrong!"))
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.BadRequest("Invalid request body")
	}
	return nil
}

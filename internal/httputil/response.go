// Package httputil holds the HTTP plumbing shared by the core server and the gateway.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError renders err as an ErrorBody. Domain errors keep their kind and
// status; anything else becomes a 500 and is logged.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	if de, ok := domain.AsError(err); ok {
		WriteJSON(w, de.HTTPStatus(), ErrorBody{Error: string(de.Kind), Description: de.Error()})
		return
	}

	logger.Error().
		Err(err).
		Str("request_id", RequestIDFromContext(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("unhandled error")
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{
		Error:       "internal error",
		Description: "internal server error",
	})
}

// DecodeJSON reads the request body into dst. Malformed JSON is a validation error.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Validation("request body is required")
		}
		return domain.Validation("invalid JSON body: %s", err.Error())
	}
	return nil
}

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"careers/listing-service/internal/apperr"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

func jsonOK(w http.ResponseWriter, v any) {
	jsonStatus(w, http.StatusOK, v)
}

func jsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonStatus(w, code, map[string]string{"error": msg})
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *apperr.ValidationError
		te *apperr.TransitionError
	)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.As(err, &te):
		jsonError(w, te.Error(), http.StatusConflict)
	case errors.Is(err, apperr.ErrSourceUnavailable):
		slog.Error("record source unavailable", "method", r.Method, "path", r.URL.Path, "err", err)
		jsonError(w, "record source unavailable", http.StatusServiceUnavailable)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Invalid("invalid JSON body: %v", err)
	}
	return nil
}

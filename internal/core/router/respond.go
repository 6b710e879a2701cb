package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mohammed-shakir/unl-locationid/internal/locationid"
	"github.com/mohammed-shakir/unl-locationid/internal/words"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var se *words.StatusError
	switch {
	case errors.Is(err, locationid.ErrInvalidArgument),
		errors.Is(err, words.ErrBadLocation),
		errors.Is(err, words.ErrEmptyWords):
		return http.StatusBadRequest
	case errors.Is(err, words.ErrNoAPIKey):
		return http.StatusServiceUnavailable
	case errors.As(err, &se):
		if se.Code == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	level := slog.LevelDebug
	if code >= http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	h.log.Log(r.Context(), level, "request failed", "path", r.URL.Path, "status", code, "err", err)
	writeJSON(w, code, errorBody{Error: err.Error()})
}

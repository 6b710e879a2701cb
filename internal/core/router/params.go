package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
	"github.com/mohammed-shakir/unl-locationid/internal/locationid"
)

// badRequest marks a query problem as an invalid argument.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", locationid.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// idParam returns a path parameter with any percent escapes removed, so
// "u4pruy%2387" and "u4pruy#87" are the same id.
func idParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", badRequest("%s: %v", name, err)
	}
	if strings.TrimSpace(v) == "" {
		return "", badRequest("missing %s", name)
	}
	return v, nil
}

func parseBBox(raw string) (model.Bounds, error) {
	b, err := model.ParseBounds(raw)
	if err != nil {
		return model.Bounds{}, badRequest("bbox: %v", err)
	}
	return b, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	return f, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("%s: %v", name, errors.Unwrap(err))
	}
	return n, nil
}

func queryFloat(r *http.Request, name string) (float64, error) {
	v := r.URL.Query().Get(name)
	if strings.TrimSpace(v) == "" {
		return 0, badRequest("missing required parameter: %s", name)
	}
	f, err := parseFloat(v)
	if err != nil {
		return 0, badRequest("%s: %v", name, err)
	}
	return f, nil
}

func parseElevation(r *http.Request) (model.Elevation, error) {
	n, err := queryInt(r, "elevation", 0)
	if err != nil {
		return model.Elevation{}, err
	}
	if int64(n) != int64(int32(n)) {
		return model.Elevation{}, badRequest("elevation out of range")
	}
	et, err := model.ParseElevationType(r.URL.Query().Get("elevationType"))
	if err != nil {
		return model.Elevation{}, badRequest("%v", err)
	}
	return model.Elevation{Number: int32(n), Type: et}, nil
}

package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohammed-shakir/unl-locationid/internal/core/config"
	"github.com/mohammed-shakir/unl-locationid/internal/core/health"
	"github.com/mohammed-shakir/unl-locationid/internal/core/router"
	"github.com/mohammed-shakir/unl-locationid/internal/metrics"
)

func TestNewHandler_Routes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, router.Deps{Config: config.Config{GridMaxLines: 5000}}, Options{})

	cases := []struct {
		target string
		code   int
		body   string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/readyz", http.StatusOK, `"ready"`},
		{"/v1/decode/u4pruy", http.StatusOK, `"lat":57.648`},
		{"/v1/decode/u4prua", http.StatusBadRequest, "invalid argument"},
		{"/metrics", http.StatusOK, "http_requests_total"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.target, nil))
		if rr.Code != tc.code {
			t.Fatalf("%s: status=%d want %d", tc.target, rr.Code, tc.code)
		}
		if !strings.Contains(rr.Body.String(), tc.body) {
			t.Fatalf("%s: body %q missing %q", tc.target, rr.Body.String(), tc.body)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s: missing X-Request-ID", tc.target)
		}
	}
}

func TestNewHandler_ReadinessAndProviderMetrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := metrics.Init(metrics.Config{Build: metrics.BuildInfo{Version: "t"}})
	h := NewHandler(logger, router.Deps{}, Options{
		Checks:  map[string]health.Checker{"redis": func(context.Context) error { return errors.New("down") }},
		Metrics: p.Handler(),
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), "down") {
		t.Fatalf("readyz status=%d body=%q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `unl_build_info{`) {
		t.Fatalf("metrics not served from provider registry:\n%s", rr.Body.String())
	}
}

package metrics

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit_BuildInfoAndRuntime(t *testing.T) {
	p := Init(Config{Build: BuildInfo{Version: "1.2.0", Revision: "abc123", Branch: "main", BuildDate: "2026-10-01"}})

	want := `
# HELP unl_build_info Build of the running binary, always 1.
# TYPE unl_build_info gauge
unl_build_info{branch="main",build_date="2026-10-01",revision="abc123",version="1.2.0"} 1
`
	if err := testutil.GatherAndCompare(p.Gatherer(), strings.NewReader(want), "unl_build_info"); err != nil {
		t.Fatalf("build info: %v", err)
	}

	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_goroutines") {
		t.Fatalf("expected go runtime metrics; got:\n%s", rr.Body.String())
	}
}

func TestInit_DefaultVersion(t *testing.T) {
	p := Init(Config{})
	n, err := testutil.GatherAndCount(p.Gatherer(), "unl_build_info")
	if err != nil || n != 1 {
		t.Fatalf("unl_build_info series=%d err=%v", n, err)
	}
	if !strings.Contains(gatherText(t, p), `version="dev"`) {
		t.Fatalf("expected version=dev")
	}
}

func gatherText(t *testing.T, p *Provider) string {
	t.Helper()
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rr.Body.String()
}

func TestServe_StopsOnCancel(t *testing.T) {
	p := Init(Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}

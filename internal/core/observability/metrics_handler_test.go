package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsHandler_Smoke(t *testing.T) {
	ObserveHTTP("GET", "/v1/decode/{id}", 200, 0.001)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `http_requests_total{method="GET",route="/v1/decode/{id}",status="200"}`) {
		t.Fatalf("metrics payload did not contain expected metric names; got:\n%s", body)
	}
}

func TestCounters_ByLabel(t *testing.T) {
	beforeOK := testutil.ToFloat64(codecOpsTotal.WithLabelValues("decode", "ok"))
	beforeErr := testutil.ToFloat64(codecOpsTotal.WithLabelValues("decode", "error"))
	ObserveCodecOp("decode", nil)
	ObserveCodecOp("decode", errors.New("boom"))
	ObserveCodecOp("decode", nil)
	if got := testutil.ToFloat64(codecOpsTotal.WithLabelValues("decode", "ok")) - beforeOK; got != 2 {
		t.Fatalf("decode ok delta=%v want 2", got)
	}
	if got := testutil.ToFloat64(codecOpsTotal.WithLabelValues("decode", "error")) - beforeErr; got != 1 {
		t.Fatalf("decode error delta=%v want 1", got)
	}

	hits := testutil.ToFloat64(cacheResults.WithLabelValues("redis", "hit"))
	AddCacheHits("redis", 3)
	AddCacheHits("redis", 0)
	if got := testutil.ToFloat64(cacheResults.WithLabelValues("redis", "hit")) - hits; got != 3 {
		t.Fatalf("redis hit delta=%v want 3", got)
	}
}

func TestInit_RegistersIntoCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Init(reg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// second call must tolerate already registered collectors
	if err := Init(reg); err != nil {
		t.Fatalf("Init twice: %v", err)
	}
	if err := Init(nil); err != nil {
		t.Fatalf("Init(nil): %v", err)
	}

	AddInvalidatedKeys(2)
	n, err := testutil.GatherAndCount(reg, "invalidation_keys_deleted_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected invalidation_keys_deleted_total in custom registry, got %d series", n)
	}
}

package words

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mohammed-shakir/unl-locationid/internal/cache/keys"
	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
)

const sampleBody = `{"location":{"lat":57.648,"lon":10.41,"elevation":3,"elevationType":"floor",
"bounds":{"ne":{"lat":57.6507568359375,"lon":10.4150390625},"sw":{"lat":57.645263671875,"lon":10.404052734375}},
"geohash":"u4pruy@3","words":"index.home.raft"}}`

func fakeService(t *testing.T, hits *atomic.Int32, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer k3y" {
			http.Error(w, "bad auth "+got, http.StatusUnauthorized)
			return
		}
		w.Header().Set("X-Path", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"u4pruy":         keys.KindLocationID,
		"u4pruy@3":       keys.KindLocationID,
		"u4pruy#120":     keys.KindLocationID,
		"57.648,10.41":   keys.KindCoordinates,
		"-25.38, -49.26": keys.KindCoordinates,
	}
	for in, want := range cases {
		got, err := Classify(in)
		if err != nil || got != want {
			t.Fatalf("Classify(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"u4", "hello world", "u4pruy@1234", "123.4,10"} {
		if _, err := Classify(in); !errors.Is(err, ErrBadLocation) {
			t.Fatalf("Classify(%q) err=%v want ErrBadLocation", in, err)
		}
	}
}

func TestToWords_LocationIDEndpointAndDecoding(t *testing.T) {
	var hits atomic.Int32
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		path.Store(r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer k3y" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/v1/location", "k3y", srv.Client())
	loc, err := c.ToWords(context.Background(), "u4pruy@3")
	if err != nil {
		t.Fatalf("ToWords: %v", err)
	}
	if got := path.Load().(string); got != "/api/v1/location/geohash/u4pruy@3" {
		t.Fatalf("path=%q", got)
	}
	want := model.Location{
		Point:     model.Point{Lat: 57.648, Lon: 10.41},
		Elevation: model.Elevation{Number: 3},
		Bounds: model.Bounds{
			SW: model.Point{Lat: 57.645263671875, Lon: 10.404052734375},
			NE: model.Point{Lat: 57.6507568359375, Lon: 10.4150390625},
		},
		LocationID: "u4pruy@3",
		Words:      "index.home.raft",
	}
	if loc != want {
		t.Fatalf("got %+v want %+v", loc, want)
	}

	if _, err := c.ToWords(context.Background(), "57.648, 10.41"); err != nil {
		t.Fatalf("ToWords coords: %v", err)
	}
	if got := path.Load().(string); got != "/api/v1/location/coordinates/57.648, 10.41" {
		t.Fatalf("coordinates path=%q", got)
	}

	if _, err := c.Words(context.Background(), "index.home.raft"); err != nil {
		t.Fatalf("Words: %v", err)
	}
	if got := path.Load().(string); got != "/api/v1/location/words/index.home.raft" {
		t.Fatalf("words path=%q", got)
	}
}

func TestClient_HeightMarkerIsEscaped(t *testing.T) {
	var hits atomic.Int32
	srv := fakeService(t, &hits, http.StatusCreated, strings.Replace(sampleBody, `"floor"`, `"heightincm"`, 1))
	c := New(srv.URL, "k3y", srv.Client())

	loc, err := c.ToWords(context.Background(), "u4pruy#3")
	if err != nil {
		t.Fatalf("ToWords: %v", err)
	}
	if loc.Elevation.Type != model.HeightInCm {
		t.Fatalf("elevation=%+v", loc.Elevation)
	}
}

func TestClient_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := fakeService(t, &hits, http.StatusNotFound, "no such words")

	if _, err := New(srv.URL, "", nil).ToWords(context.Background(), "u4pruy"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err=%v want ErrNoAPIKey", err)
	}
	if _, err := New(srv.URL, "", nil).Words(context.Background(), "a.b.c"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err=%v want ErrNoAPIKey", err)
	}
	c := New(srv.URL, "k3y", srv.Client())
	if _, err := c.ToWords(context.Background(), "not a location"); !errors.Is(err, ErrBadLocation) {
		t.Fatalf("err=%v want ErrBadLocation", err)
	}
	if _, err := c.Words(context.Background(), "  "); !errors.Is(err, ErrEmptyWords) {
		t.Fatalf("err=%v want ErrEmptyWords", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("validation failures must not reach upstream, hits=%d", hits.Load())
	}

	_, err := c.Words(context.Background(), "a.b.c")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound || se.Body != "no such words" {
		t.Fatalf("err=%v want *StatusError 404", err)
	}

	bad := fakeService(t, &hits, http.StatusOK, `{"nothing":true}`)
	if _, err := New(bad.URL, "k3y", bad.Client()).Words(context.Background(), "a.b.c"); err == nil {
		t.Fatalf("expected error for response without location")
	}
}

// Package words talks to the remote UNL location service that maps
// locationIds and coordinates to "words" and back.
package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mohammed-shakir/unl-locationid/internal/cache/keys"
	"github.com/mohammed-shakir/unl-locationid/internal/core/model"
	"github.com/mohammed-shakir/unl-locationid/internal/core/observability"
)

const DefaultBaseURL = "https://map.unl.global/api/v1/location/"

const (
	endpointWords       = "words/"
	endpointLocationID  = "geohash/"
	endpointCoordinates = "coordinates/"
)

const maxBody = 1 << 20

var (
	ErrNoAPIKey    = errors.New("words: API key not set")
	ErrBadLocation = errors.New("words: expected a locationId or lat,lon coordinates")
	ErrEmptyWords  = errors.New("words: empty words")
)

var (
	locationIDRe  = regexp.MustCompile(`^[0123456789bcdefghjkmnpqrstuvwxyz]{3,16}[@#]?[0-9]{0,3}$`)
	coordinatesRe = regexp.MustCompile(`^-?[0-9]{0,2}\.?[0-9]{0,16},\s?-?[0-9]{0,3}\.?[0-9]{0,16}$`)
)

// StatusError is returned when the service answers with anything but 200/201.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("words: %s returned %d: %s", e.Endpoint, e.Code, e.Body)
}

// Classify returns keys.KindLocationID or keys.KindCoordinates for a
// location accepted by ToWords.
func Classify(location string) (string, error) {
	switch {
	case locationIDRe.MatchString(location):
		return keys.KindLocationID, nil
	case coordinatesRe.MatchString(location):
		return keys.KindCoordinates, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadLocation, location)
	}
}

type Client struct {
	base   string
	apiKey string
	hc     *http.Client
}

func New(baseURL, apiKey string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: baseURL, apiKey: apiKey, hc: hc}
}

// ToWords looks up a locationId (optionally with elevation) or "lat,lon".
func (c *Client) ToWords(ctx context.Context, location string) (model.Location, error) {
	if c.apiKey == "" {
		return model.Location{}, ErrNoAPIKey
	}
	kind, err := Classify(location)
	if err != nil {
		return model.Location{}, err
	}
	endpoint := endpointLocationID
	if kind == keys.KindCoordinates {
		endpoint = endpointCoordinates
	}
	return c.get(ctx, endpoint, location)
}

func (c *Client) Words(ctx context.Context, words string) (model.Location, error) {
	if c.apiKey == "" {
		return model.Location{}, ErrNoAPIKey
	}
	if strings.TrimSpace(words) == "" {
		return model.Location{}, ErrEmptyWords
	}
	return c.get(ctx, endpointWords, words)
}

type wirePoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type wireResponse struct {
	Location *struct {
		Lat           float64 `json:"lat"`
		Lon           float64 `json:"lon"`
		Elevation     int32   `json:"elevation"`
		ElevationType string  `json:"elevationType"`
		Bounds        struct {
			NE wirePoint `json:"ne"`
			SW wirePoint `json:"sw"`
		} `json:"bounds"`
		Geohash string `json:"geohash"`
		Words   string `json:"words"`
	} `json:"location"`
}

func (c *Client) get(ctx context.Context, endpoint, arg string) (loc model.Location, err error) {
	start := time.Now()
	upstream := strings.TrimSuffix(endpoint, "/")
	defer func() { observability.ObserveUpstreamLatency(upstream, err, time.Since(start).Seconds()) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+endpoint+url.PathEscape(arg), nil)
	if err != nil {
		return model.Location{}, fmt.Errorf("words: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return model.Location{}, fmt.Errorf("words: call %s: %w", upstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return model.Location{}, fmt.Errorf("words: read %s response: %w", upstream, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		const maxSnippet = 256
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxSnippet {
			snippet = snippet[:maxSnippet]
		}
		return model.Location{}, &StatusError{Endpoint: upstream, Code: resp.StatusCode, Body: snippet}
	}

	var w wireResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return model.Location{}, fmt.Errorf("words: decode %s response: %w", upstream, err)
	}
	if w.Location == nil {
		return model.Location{}, fmt.Errorf("words: %s response has no location", upstream)
	}
	et, err := model.ParseElevationType(w.Location.ElevationType)
	if err != nil {
		return model.Location{}, fmt.Errorf("words: %s response: %w", upstream, err)
	}
	l := w.Location
	return model.Location{
		Point:     model.Point{Lat: l.Lat, Lon: l.Lon},
		Elevation: model.Elevation{Number: l.Elevation, Type: et},
		Bounds: model.Bounds{
			SW: model.Point{Lat: l.Bounds.SW.Lat, Lon: l.Bounds.SW.Lon},
			NE: model.Point{Lat: l.Bounds.NE.Lat, Lon: l.Bounds.NE.Lon},
		},
		LocationID: l.Geohash,
		Words:      l.Words,
	}, nil
}

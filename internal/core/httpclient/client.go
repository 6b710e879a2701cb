// Package httpclient builds the client used to call the words service.
package httpclient

import (
	"net"
	"net/http"
	"time"

	mylog "github.com/mohammed-shakir/unl-locationid/internal/logger"
)

// NewOutbound returns a client whose requests carry the caller's request id
// and userAgent. timeout <= 0 means 30s.
func NewOutbound(timeout time.Duration, userAgent string) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{
		Transport: &tagging{next: base, userAgent: userAgent},
		Timeout:   timeout,
	}
}

type tagging struct {
	next      http.RoundTripper
	userAgent string
}

func (t *tagging) RoundTrip(req *http.Request) (*http.Response, error) {
	id := mylog.RequestID(req.Context())
	if id == "" && t.userAgent == "" {
		return t.next.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	if id != "" && req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", id)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.next.RoundTrip(req)
}

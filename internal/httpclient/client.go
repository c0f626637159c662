package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Config holds settings for the HTTP client.
type Config struct {
	Timeout  time.Duration
	Proxy    func(*http.Request) (*url.URL, error)
	Headers  http.Header
	Cookie   string
	Insecure bool
}

// headerRoundTripper wraps a base RoundTripper to inject headers and cookies.
type headerRoundTripper struct {
	base    http.RoundTripper
	headers http.Header
	cookie  string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := h.base
	if base == nil {
		base = http.DefaultTransport
	}
	if len(h.headers) == 0 && h.cookie == "" {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	for k, vs := range h.headers {
		r.Header.Del(k)
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if h.cookie != "" {
		r.Header.Set("Cookie", h.cookie)
	}
	return base.RoundTrip(r)
}

// New returns a configured HTTP client with automatic redirects disabled.
// Callers that want redirects followed do it themselves so every hop is seen.
func New(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy:           cfg.Proxy,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure},
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.Timeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: &headerRoundTripper{
			base:    transport,
			headers: cfg.Headers,
			cookie:  cfg.Cookie,
		},
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

package probe_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/selimozcann/siteprobe/internal/httpclient"
	"github.com/selimozcann/siteprobe/internal/probe"
)

func setupServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Echo-Agent", r.UserAgent())
		_, _ = w.Write([]byte("hello"))
	})
	mux.HandleFunc("/302", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/301", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/307", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/307", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "final", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/nolocation", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/notmodified", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/final")
		w.WriteHeader(http.StatusNotModified)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/ftp", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "ftp://files.example.com/", http.StatusFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	return httptest.NewServer(mux)
}

func newProber(cfg probe.Config) *probe.Prober {
	return probe.New(httpclient.New(httpclient.Config{Timeout: 5 * time.Second}), cfg)
}

func TestRunDirect(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	res, err := newProber(probe.Config{}).Run(context.Background(), srv.URL+"/final")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FinalStatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.FinalStatusCode)
	}
	if res.Reason != "OK" {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
	if len(res.RedirectChain) != 0 || res.Redirected() {
		t.Fatalf("expected empty redirect chain, got %v", res.RedirectChain)
	}
	if res.BodySize != int64(len("hello")) {
		t.Fatalf("expected body size 5, got %d", res.BodySize)
	}
	if res.ElapsedSeconds() <= 0 {
		t.Fatalf("expected positive elapsed time, got %v", res.Elapsed)
	}
	if _, ok := res.Header("content-type"); !ok {
		t.Fatalf("expected content-type header, got %v", res.Headers)
	}
	if res.FinalURL != srv.URL+"/final" {
		t.Fatalf("unexpected final URL %q", res.FinalURL)
	}
	if res.UserAgent != probe.DefaultUserAgent {
		t.Fatalf("expected default user agent, got %q", res.UserAgent)
	}
}

func TestRunSingleRedirect(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	res, err := newProber(probe.Config{}).Run(context.Background(), srv.URL+"/302")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.RedirectChain) != 1 {
		t.Fatalf("expected 1 hop, got %d", len(res.RedirectChain))
	}
	hop := res.RedirectChain[0]
	if hop.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 hop, got %d", hop.StatusCode)
	}
	if hop.URL != srv.URL+"/302" || hop.Location != srv.URL+"/final" {
		t.Fatalf("unexpected hop %+v", hop)
	}
	if res.FinalStatusCode != http.StatusOK {
		t.Fatalf("expected final 200, got %d", res.FinalStatusCode)
	}
}

func TestRunChainOrder(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	res, err := newProber(probe.Config{}).Run(context.Background(), srv.URL+"/301")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{http.StatusMovedPermanently, http.StatusTemporaryRedirect}
	if len(res.RedirectChain) != len(want) {
		t.Fatalf("expected %d hops, got %d", len(want), len(res.RedirectChain))
	}
	for i, status := range want {
		if res.RedirectChain[i].StatusCode != status {
			t.Fatalf("hop %d: expected %d, got %d", i, status, res.RedirectChain[i].StatusCode)
		}
	}
	if res.FinalURL != srv.URL+"/final" {
		t.Fatalf("relative location not resolved: %q", res.FinalURL)
	}
}

func TestRunTerminal3xx(t *testing.T) {
	srv := setupServer()
	defer srv.Close()
	p := newProber(probe.Config{})

	tests := []struct {
		path   string
		status int
	}{
		{"/nolocation", http.StatusFound},
		{"/notmodified", http.StatusNotModified},
		{"/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		res, err := p.Run(context.Background(), srv.URL+tt.path)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.path, err)
		}
		if res.FinalStatusCode != tt.status || len(res.RedirectChain) != 0 {
			t.Fatalf("%s: got status %d with %d hops", tt.path, res.FinalStatusCode, len(res.RedirectChain))
		}
	}
}

func TestRunRedirectLoop(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	_, err := newProber(probe.Config{MaxRedirects: 3}).Run(context.Background(), srv.URL+"/loop")
	if !errors.Is(err, probe.ErrTooManyRedirects) {
		t.Fatalf("expected too many redirects, got %v", err)
	}
	if probe.KindOf(err) != probe.TooManyRedirects {
		t.Fatalf("unexpected kind %v", probe.KindOf(err))
	}
}

func TestRunRedirectCapInclusive(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	// /301 -> /307 -> /final is exactly two redirects.
	if _, err := newProber(probe.Config{MaxRedirects: 2}).Run(context.Background(), srv.URL+"/301"); err != nil {
		t.Fatalf("two redirects under a cap of two should succeed: %v", err)
	}
	if _, err := newProber(probe.Config{MaxRedirects: 1}).Run(context.Background(), srv.URL+"/301"); !errors.Is(err, probe.ErrTooManyRedirects) {
		t.Fatalf("expected too many redirects, got %v", err)
	}
}

func TestRunRedirectToUnsupportedScheme(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	_, err := newProber(probe.Config{}).Run(context.Background(), srv.URL+"/ftp")
	if !errors.Is(err, probe.ErrInvalidURL) {
		t.Fatalf("expected invalid URL, got %v", err)
	}
}

type failDoer struct{ t *testing.T }

func (f failDoer) Do(req *http.Request) (*http.Response, error) {
	f.t.Fatalf("unexpected network call to %s", req.URL)
	return nil, nil
}

func TestRunInvalidURL(t *testing.T) {
	t.Parallel()
	p := probe.New(failDoer{t}, probe.Config{})
	for _, raw := range []string{"", "   ", "example.com", "ftp://example.com/file", "http://", "://bad", "https://:80", "http://:8080/x", "http://user@:1/"} {
		_, err := p.Run(context.Background(), raw)
		if !errors.Is(err, probe.ErrInvalidURL) {
			t.Fatalf("%q: expected invalid URL, got %v", raw, err)
		}
	}
}

func TestRunConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	_, err := newProber(probe.Config{}).Run(context.Background(), target)
	if !errors.Is(err, probe.ErrConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

type dnsFailDoer struct{}

func (dnsFailDoer) Do(req *http.Request) (*http.Response, error) {
	return nil, &url.Error{Op: "Get", URL: req.URL.String(), Err: &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: &net.DNSError{Err: "no such host", Name: req.URL.Hostname(), IsNotFound: true},
	}}
}

func TestRunUnknownHost(t *testing.T) {
	t.Parallel()
	_, err := probe.New(dnsFailDoer{}, probe.Config{}).Run(context.Background(), "https://does-not-exist.invalid/")
	if !errors.Is(err, probe.ErrConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) {
		t.Fatalf("expected underlying DNS error to be preserved")
	}
	if !strings.Contains(err.Error(), "does-not-exist.invalid") {
		t.Fatalf("expected message to name the URL: %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	start := time.Now()
	_, err := newProber(probe.Config{Timeout: 100 * time.Millisecond}).Run(context.Background(), srv.URL+"/slow")
	if !errors.Is(err, probe.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatalf("timeout not enforced")
	}
}

func TestRunTimeoutDuringBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("abc"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := newProber(probe.Config{Timeout: 200 * time.Millisecond}).Run(context.Background(), srv.URL)
	if !errors.Is(err, probe.ErrTimeout) {
		t.Fatalf("expected timeout while reading body, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatalf("timeout not enforced during body read")
	}
}

func TestRunUserAgent(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	def, err := newProber(probe.Config{}).Run(context.Background(), srv.URL+"/final")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	custom, err := newProber(probe.Config{UserAgent: "siteprobe-test/1.0"}).Run(context.Background(), srv.URL+"/final")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, _ := def.Header("X-Echo-Agent"); got != probe.DefaultUserAgent {
		t.Fatalf("server saw %q, want default agent", got)
	}
	if got, _ := custom.Header("X-Echo-Agent"); got != "siteprobe-test/1.0" {
		t.Fatalf("server saw %q, want custom agent", got)
	}
	if a, b := headerNames(def.Headers), headerNames(custom.Headers); strings.Join(a, ",") != strings.Join(b, ",") {
		t.Fatalf("header names differ: %v vs %v", a, b)
	}
}

func TestRunHTTPSDowngrade(t *testing.T) {
	plain := setupServer()
	defer plain.Close()
	tlsSrv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, plain.URL+"/final", http.StatusFound)
	}))
	defer tlsSrv.Close()

	client := httpclient.New(httpclient.Config{Timeout: 5 * time.Second, Insecure: true})
	res, err := probe.New(client, probe.Config{}).Run(context.Background(), tlsSrv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.RedirectChain) != 1 || !res.RedirectChain[0].Downgrade {
		t.Fatalf("expected downgrade hop, got %+v", res.RedirectChain)
	}
}

func TestRunTLSFailure(t *testing.T) {
	tlsSrv := httptest.NewTLSServer(http.NotFoundHandler())
	defer tlsSrv.Close()

	// Certificate is self-signed and verification is on.
	_, err := newProber(probe.Config{}).Run(context.Background(), tlsSrv.URL)
	if !errors.Is(err, probe.ErrConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestProberConcurrentUse(t *testing.T) {
	srv := setupServer()
	defer srv.Close()
	p := newProber(probe.Config{})

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Run(context.Background(), srv.URL+"/302"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	got := probe.New(failDoer{t}, probe.Config{}).Config()
	if got != probe.DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func headerNames(h map[string]string) []string {
	names := make([]string, 0, len(h))
	for k := range h {
		if k == "Date" || k == "X-Echo-Agent" {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func TestFetchReturnsBody(t *testing.T) {
	srv := setupServer()
	defer srv.Close()

	res, body, err := newProber(probe.Config{}).Fetch(context.Background(), srv.URL+"/302")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("unexpected body %q", body)
	}
	if res.BodySize != int64(len(body)) {
		t.Fatalf("body size %d does not match body length %d", res.BodySize, len(body))
	}
}

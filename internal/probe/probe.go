package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/selimozcann/siteprobe/internal/model"
)

// Defaults used when a Config field is left at its zero value.
const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 10
)

// Config controls a Prober.
type Config struct {
	UserAgent    string
	Timeout      time.Duration // bounds the whole transaction, redirects and body included
	MaxRedirects int
}

// DefaultConfig returns the configuration used by the CLI when no flags are given.
func DefaultConfig() Config {
	return Config{
		UserAgent:    DefaultUserAgent,
		Timeout:      DefaultTimeout,
		MaxRedirects: DefaultMaxRedirects,
	}
}

// Doer sends a single HTTP request. Implementations must hand redirect
// responses back unchanged; the Prober follows them itself.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Prober performs single-URL probes. It holds no mutable state and may be
// shared between goroutines.
type Prober struct {
	doer Doer
	cfg  Config
}

// New creates a Prober. Zero-valued Config fields take the package defaults.
func New(doer Doer, cfg Config) *Prober {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = def.MaxRedirects
	}
	return &Prober{doer: doer, cfg: cfg}
}

// Config returns the effective configuration.
func (p *Prober) Config() Config { return p.cfg }

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		return nil, errors.New("missing scheme, include http:// or https://")
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

// Run issues a GET to target, following redirects, and reports status,
// timing, size, redirect hops and headers of the terminal response.
func (p *Prober) Run(ctx context.Context, target string) (*model.ProbeResult, error) {
	return p.run(ctx, target, io.Discard)
}

// Fetch behaves like Run and also returns the terminal response body.
func (p *Prober) Fetch(ctx context.Context, target string) (*model.ProbeResult, []byte, error) {
	var buf bytes.Buffer
	res, err := p.run(ctx, target, &buf)
	if err != nil {
		return nil, nil, err
	}
	return res, buf.Bytes(), nil
}

func (p *Prober) run(ctx context.Context, target string, body io.Writer) (*model.ProbeResult, error) {
	current, err := ValidateURL(target)
	if err != nil {
		return nil, &Error{Kind: InvalidURL, URL: target, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	res := &model.ProbeResult{TargetURL: target, UserAgent: p.cfg.UserAgent}
	start := time.Now()
	for {
		hopStart := time.Now()
		resp, err := p.send(ctx, current)
		if err != nil {
			return nil, Classify(target, err)
		}

		if loc, ok := redirectLocation(resp); ok {
			// Drain so the connection can be reused for the next hop.
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()

			next, err := current.Parse(loc)
			if err == nil {
				_, err = ValidateURL(next.String())
			}
			if err != nil {
				return nil, &Error{Kind: InvalidURL, URL: loc, Err: fmt.Errorf("redirect from %s: %w", current, err)}
			}

			hop := model.Hop{
				URL:        current.String(),
				StatusCode: resp.StatusCode,
				Location:   next.String(),
				Elapsed:    time.Since(hopStart),
				Downgrade:  current.Scheme == "https" && next.Scheme == "http",
			}
			res.RedirectChain = append(res.RedirectChain, hop)
			log.Debug("redirect", "hop", len(res.RedirectChain), "status", hop.StatusCode, "from", hop.URL, "to", hop.Location)

			if len(res.RedirectChain) > p.cfg.MaxRedirects {
				return nil, &Error{Kind: TooManyRedirects, URL: target, Err: fmt.Errorf("stopped after %d redirects", p.cfg.MaxRedirects)}
			}
			current = next
			continue
		}

		n, err := io.Copy(body, resp.Body)
		_ = resp.Body.Close()
		res.Elapsed = time.Since(start)
		if err != nil {
			return nil, Classify(target, fmt.Errorf("read body: %w", err))
		}

		res.FinalURL = current.String()
		res.FinalStatusCode = resp.StatusCode
		res.Reason = http.StatusText(resp.StatusCode)
		res.BodySize = n
		res.Headers = flattenHeader(resp.Header)
		log.Debug("complete", "url", res.FinalURL, "status", res.FinalStatusCode, "bytes", n, "elapsed", res.Elapsed)
		return res, nil
	}
}

func (p *Prober) send(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	log.Debug("dispatch", "method", req.Method, "url", req.URL)
	return p.doer.Do(req)
}

// redirectLocation returns the Location of a response the probe should
// follow. 300 and 304 are terminal, as is any 3xx without a Location.
func redirectLocation(resp *http.Response) (string, bool) {
	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return "", false
	}
	loc := resp.Header.Get("Location")
	return loc, loc != ""
}

// flattenHeader keeps the last value of repeated headers.
func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) == 0 {
			continue
		}
		out[http.CanonicalHeaderKey(k)] = vs[len(vs)-1]
	}
	return out
}

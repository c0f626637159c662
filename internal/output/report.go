package output

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/selimozcann/siteprobe/internal/model"
	"github.com/selimozcann/siteprobe/internal/statuscolor"
)

const rule = "=================================================="

// RedirectType classifies where a redirect chain ended up relative to the
// target.
type RedirectType string

const (
	RedirectNone      RedirectType = "direct"
	RedirectSameSite  RedirectType = "same-site"
	RedirectCrossSite RedirectType = "cross-site"
	RedirectUnknown   RedirectType = "unknown"
)

// Classify compares the registrable domain of the target and final URLs.
func Classify(res *model.ProbeResult) RedirectType {
	if !res.Redirected() {
		return RedirectNone
	}
	from, to := registrableDomain(res.TargetURL), registrableDomain(res.FinalURL)
	switch {
	case from == "" || to == "":
		return RedirectUnknown
	case from == to:
		return RedirectSameSite
	default:
		return RedirectCrossSite
	}
}

func registrableDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}

// WriteReport renders the full probe report.
func WriteReport(w io.Writer, res *model.ProbeResult) error {
	ew := &errWriter{w: w}
	ew.printf("\n%s\n", statuscolor.Heading("Performance Report for "+res.TargetURL))
	ew.println(rule)
	ew.printf("Status Code: %s (%s)\n", statuscolor.Sprint(res.FinalStatusCode), res.Reason)
	ew.printf("Page Size: %.2f KB (%d bytes)\n", float64(res.BodySize)/1024, res.BodySize)
	ew.printf("Load Time: %.6fs (%s)\n", res.ElapsedSeconds(), res.Elapsed.Round(time.Millisecond))
	ew.printf("User-Agent: %s\n", res.UserAgent)
	ew.printf("Final URL: %s\n", res.FinalURL)
	ew.printf("Redirect Count: %d\n", len(res.RedirectChain))

	if res.Redirected() {
		ew.printf("Redirect Type: %s\n", Classify(res))
		ew.println("Redirects:")
		for i, hop := range res.RedirectChain {
			ew.printf("  [%d] %s %s -> %s (%dms)", i+1, statuscolor.Sprint(hop.StatusCode), hop.URL, hop.Location, hop.Elapsed.Milliseconds())
			if hop.Downgrade {
				ew.printf(" %s", statuscolor.WrapByStatus("[https->http]", 500))
			}
			ew.println()
		}
	}

	ew.println("Response Headers:")
	for _, name := range sortedKeys(res.Headers) {
		ew.printf("  %s: %s\n", name, res.Headers[name])
	}
	ew.println(rule)
	return ew.err
}

// WriteReachability renders the short reachability report.
func WriteReachability(w io.Writer, res *model.ProbeResult) error {
	ew := &errWriter{w: w}
	ew.printf("\n%s\n", statuscolor.Heading("Website Reachability Report"))
	ew.println(rule[:30])
	ew.printf("URL: %s\n", res.TargetURL)
	ew.println("  Status: Reachable")
	ew.printf("  Status Code: %s (%s)\n", statuscolor.Sprint(res.FinalStatusCode), res.Reason)
	ew.printf("  Response Time: %.6f seconds\n", res.ElapsedSeconds())
	if res.Redirected() {
		ew.printf("  Final URL: %s\n", res.FinalURL)
	}
	ew.println(rule[:30])
	return ew.err
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// errWriter keeps the first write error so report code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, args...)
}

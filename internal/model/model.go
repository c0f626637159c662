package model

import (
	"net/http"
	"time"
)

// Hop represents a single redirect response that was followed.
type Hop struct {
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code"`
	Location   string        `json:"location"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	// Downgrade is set when the hop leaves https for plain http.
	Downgrade bool `json:"downgrade,omitempty"`
}

// ProbeResult is everything learned from one probe of one URL.
type ProbeResult struct {
	TargetURL       string            `json:"target_url"`
	UserAgent       string            `json:"user_agent"`
	FinalURL        string            `json:"final_url"`
	FinalStatusCode int               `json:"final_status_code"`
	Reason          string            `json:"reason"`
	Elapsed         time.Duration     `json:"elapsed_ns"`
	BodySize        int64             `json:"body_size_bytes"`
	RedirectChain   []Hop             `json:"redirect_chain"`
	Headers         map[string]string `json:"headers"`
}

// ElapsedSeconds returns the wall-clock duration of the probe in seconds.
func (r *ProbeResult) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Redirected reports whether at least one redirect was followed.
func (r *ProbeResult) Redirected() bool {
	return len(r.RedirectChain) > 0
}

// RobotsGroup is a set of user agents sharing the same Allow/Disallow rules.
type RobotsGroup struct {
	UserAgents []string `json:"user_agents"`
	Allow      []string `json:"allow,omitempty"`
	Disallow   []string `json:"disallow,omitempty"`
}

// RobotsReport summarises a site's robots.txt.
type RobotsReport struct {
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code"`
	UserAgent  string        `json:"user_agent"`
	Allowed    bool          `json:"allowed"`
	Sitemaps   []string      `json:"sitemaps,omitempty"`
	Groups     []RobotsGroup `json:"groups,omitempty"`
}

// SitemapCheck is the outcome of probing one candidate sitemap location.
type SitemapCheck struct {
	URL        string `json:"url"`
	Reachable  bool   `json:"reachable"`
	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Header looks up a response header by name, ignoring case.
func (r *ProbeResult) Header(name string) (string, bool) {
	v, ok := r.Headers[http.CanonicalHeaderKey(name)]
	return v, ok
}

// Package robots fetches a site's robots.txt and summarises its rules.
package robots

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/jimsmart/grobotstxt"

	"github.com/selimozcann/siteprobe/internal/model"
	"github.com/selimozcann/siteprobe/internal/probe"
)

// HTTPError is returned when robots.txt answers with a non-2xx status.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %s returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// URLFor returns the robots.txt location for the host of target.
func URLFor(target string) (string, error) {
	u, err := probe.ValidateURL(target)
	if err != nil {
		return "", &probe.Error{Kind: probe.InvalidURL, URL: target, Err: err}
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String(), nil
}

// Fetch downloads and parses robots.txt for target's host using the
// prober's user agent, and reports whether that agent may fetch target.
func Fetch(ctx context.Context, p *probe.Prober, target string) (*model.RobotsReport, error) {
	robotsURL, err := URLFor(target)
	if err != nil {
		return nil, err
	}
	res, body, err := p.Fetch(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	if res.FinalStatusCode < 200 || res.FinalStatusCode > 299 {
		return nil, &HTTPError{URL: res.FinalURL, StatusCode: res.FinalStatusCode}
	}
	log.Debug("fetched robots.txt", "url", res.FinalURL, "bytes", len(body))

	rep := Parse(string(body))
	rep.URL = robotsURL
	rep.StatusCode = res.FinalStatusCode
	rep.UserAgent = res.UserAgent
	rep.Allowed = grobotstxt.AgentAllowed(string(body), res.UserAgent, target)
	return rep, nil
}

// Parse extracts sitemaps and rule groups from a robots.txt body.
// Consecutive user-agent lines share one group; rules appearing before the
// first user-agent line are dropped.
func Parse(body string) *model.RobotsReport {
	c := &collector{}
	grobotstxt.Parse(body, c)
	return &model.RobotsReport{Sitemaps: c.sitemaps, Groups: c.groups}
}

// collector implements grobotstxt.ParseHandler.
type collector struct {
	sitemaps []string
	groups   []model.RobotsGroup
	inAgents bool
}

func (c *collector) HandleRobotsStart() {}
func (c *collector) HandleRobotsEnd()   {}

func (c *collector) HandleUserAgent(_ int, value string) {
	if !c.inAgents {
		c.groups = append(c.groups, model.RobotsGroup{})
	}
	g := &c.groups[len(c.groups)-1]
	g.UserAgents = append(g.UserAgents, value)
	c.inAgents = true
}

func (c *collector) HandleAllow(_ int, value string) {
	c.inAgents = false
	if g := c.current(); g != nil {
		g.Allow = append(g.Allow, value)
	}
}

func (c *collector) HandleDisallow(_ int, value string) {
	c.inAgents = false
	if g := c.current(); g != nil {
		g.Disallow = append(g.Disallow, value)
	}
}

func (c *collector) HandleSitemap(_ int, value string) {
	c.sitemaps = append(c.sitemaps, value)
}

func (c *collector) HandleUnknownAction(_ int, action, value string) {
	log.Debug("unknown robots.txt directive", "action", action, "value", value)
}

func (c *collector) current() *model.RobotsGroup {
	if len(c.groups) == 0 {
		return nil
	}
	return &c.groups[len(c.groups)-1]
}

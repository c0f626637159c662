// Package sitemap checks a list of well-known sitemap locations for a site.
package sitemap

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/selimozcann/siteprobe/internal/model"
	"github.com/selimozcann/siteprobe/internal/probe"
)

// DefaultCandidates are checked when no candidate file is supplied.
var DefaultCandidates = []string{
	"sitemap.xml",
	"sitemap_index.xml",
	"sitemap-index.xml",
	"sitemap.txt",
	"sitemap.xml.gz",
	"wp-sitemap.xml",
	"sitemap/sitemap.xml",
	"sitemaps/sitemap.xml",
}

// LoadCandidates reads one candidate path per line, skipping blank lines.
func LoadCandidates(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sitemap file %q: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sitemap file read error: %w", err)
	}
	log.Debug("loaded sitemap candidates", "file", path, "count", len(entries))
	return entries, nil
}

// Join appends path to base with exactly one slash between them.
func Join(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Check probes every candidate in order. A candidate is reachable when the
// final status is 200; probe failures are recorded on the entry.
func Check(ctx context.Context, p *probe.Prober, base string, paths []string) []model.SitemapCheck {
	out := make([]model.SitemapCheck, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		full := Join(base, path)
		check := model.SitemapCheck{URL: full}
		res, err := p.Run(ctx, full)
		if err != nil {
			check.Error = err.Error()
			log.Debug("sitemap check failed", "url", full, "error", err)
		} else {
			check.StatusCode = res.FinalStatusCode
			check.Reason = res.Reason
			check.Reachable = res.FinalStatusCode == http.StatusOK
			log.Debug("sitemap checked", "url", full, "status", res.FinalStatusCode)
		}
		out = append(out, check)
	}
	return out
}

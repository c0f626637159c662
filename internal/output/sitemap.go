package output

import (
	"io"

	"github.com/selimozcann/siteprobe/internal/model"
	"github.com/selimozcann/siteprobe/internal/statuscolor"
)

// WriteSitemaps renders the result of sitemap candidate checks.
func WriteSitemaps(w io.Writer, checks []model.SitemapCheck) error {
	ew := &errWriter{w: w}
	ew.printf("\n%s\n", statuscolor.Heading("Sitemap Check Report"))
	ew.println(rule[:30])
	found := 0
	for _, c := range checks {
		ew.printf("URL: %s\n", c.URL)
		switch {
		case c.Reachable:
			found++
			ew.println("  Status: Reachable")
			ew.printf("  Status Code: %s (%s)\n", statuscolor.Sprint(c.StatusCode), c.Reason)
		case c.Error != "":
			ew.println("  Status: Not Reachable")
			ew.printf("  Error: %s\n", c.Error)
		default:
			ew.println("  Status: Not Reachable")
			ew.printf("  Status Code: %s (%s)\n", statuscolor.Sprint(c.StatusCode), c.Reason)
		}
		ew.println(rule[:30])
	}
	ew.printf("%d of %d candidates reachable\n", found, len(checks))
	return ew.err
}

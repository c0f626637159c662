package output

import (
	"io"

	"github.com/selimozcann/siteprobe/internal/model"
	"github.com/selimozcann/siteprobe/internal/statuscolor"
)

// WriteRobots renders a robots.txt report.
func WriteRobots(w io.Writer, rep *model.RobotsReport) error {
	ew := &errWriter{w: w}
	ew.printf("\n%s\n", statuscolor.Heading("robots.txt Report for "+rep.URL))
	ew.println(rule)

	verdict := statuscolor.WrapByStatus("allowed", 200)
	if !rep.Allowed {
		verdict = statuscolor.WrapByStatus("disallowed", 403)
	}
	ew.printf("User-Agent %q is %s\n\n", rep.UserAgent, verdict)

	if len(rep.Sitemaps) > 0 {
		ew.println("Sitemaps found:")
		for _, s := range rep.Sitemaps {
			ew.printf("  - %s\n", s)
		}
		ew.println()
	}

	for _, g := range rep.Groups {
		for _, agent := range g.UserAgents {
			ew.printf("User-Agent: %s\n", agent)
		}
		writeRules(ew, "Allow", g.Allow)
		writeRules(ew, "Disallow", g.Disallow)
	}
	if len(rep.Sitemaps) == 0 && len(rep.Groups) == 0 {
		ew.println(statuscolor.Gray("robots.txt contains no rules"))
	}
	ew.println(rule)
	return ew.err
}

func writeRules(ew *errWriter, directive string, paths []string) {
	if len(paths) == 0 {
		return
	}
	ew.printf("  %s:\n", directive)
	for _, p := range paths {
		ew.printf("    - %s\n", p)
	}
}

package banner

import (
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// PrintBanner writes the start-up banner to w.
func PrintBanner(w io.Writer) {
	fig := figure.NewFigure("SITEPROBE", "doom", true)

	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	_, _ = red.Fprint(w, fig.String())
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
	_, _ = green.Fprintln(w, "    Status · timing · redirects · headers · robots")
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
}

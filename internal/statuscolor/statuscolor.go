package statuscolor

import (
	"strconv"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func colorFor(status int) func(a ...interface{}) string {
	switch {
	case status == 0:
		return gray
	case status < 300:
		return green
	case status < 400:
		return yellow
	default:
		return red
	}
}

// Sprint returns a colorized status code string (2xx green, 3xx yellow, 4xx/5xx red).
func Sprint(status int) string {
	if status == 0 {
		return gray("—")
	}
	return colorFor(status)(strconv.Itoa(status))
}

// WrapByStatus wraps the provided text with the color that corresponds to the
// supplied status code.
func WrapByStatus(text string, status int) string {
	return colorFor(status)(text)
}

// Gray wraps the provided text in a dim color.
func Gray(text string) string { return gray(text) }

// Heading is used for report titles.
func Heading(text string) string { return cyan(text) }

// Disable turns colour output off globally.
func Disable() { color.NoColor = true }

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/selimozcann/siteprobe/internal/probe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failure to the process exit status.
func exitCode(err error) int {
	switch probe.KindOf(err) {
	case probe.InvalidURL:
		return 2
	case probe.ConnectionError:
		return 3
	case probe.Timeout:
		return 4
	case probe.TooManyRedirects:
		return 5
	default:
		return 1
	}
}

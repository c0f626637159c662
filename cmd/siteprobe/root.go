package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/corpix/uarand"
	"github.com/spf13/cobra"

	"github.com/selimozcann/siteprobe/internal/banner"
	"github.com/selimozcann/siteprobe/internal/httpclient"
	"github.com/selimozcann/siteprobe/internal/output"
	"github.com/selimozcann/siteprobe/internal/probe"
	"github.com/selimozcann/siteprobe/internal/statuscolor"
)

type options struct {
	userAgent    string
	randomAgent  bool
	timeout      time.Duration
	maxRedirects int
	headers      []string
	cookie       string
	proxy        string
	insecure     bool
	json         bool
	noColor      bool
	noBanner     bool
	verbose      bool

	prober *probe.Prober
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "siteprobe <url>",
		Short: "Probe a URL for status, size, load time, redirects and headers",
		Long: `siteprobe issues one GET request to the target URL, follows redirects,
and reports the final status code, body size, load time, every redirect hop
and the response headers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.prober.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.json {
				return output.WriteJSON(cmd.OutOrStdout(), res)
			}
			return output.WriteReport(cmd.OutOrStdout(), res)
		},
	}

	def := probe.DefaultConfig()
	flags := root.PersistentFlags()
	flags.StringVar(&opts.userAgent, "user-agent", "", "User-Agent header (default: desktop Chrome)")
	flags.BoolVar(&opts.randomAgent, "random-agent", false, "Use a random browser User-Agent")
	flags.DurationVar(&opts.timeout, "timeout", def.Timeout, "Timeout for the whole request including redirects")
	flags.IntVar(&opts.maxRedirects, "max-redirects", def.MaxRedirects, "Maximum number of redirects to follow")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, "Extra HTTP header \"Key: Value\" (repeatable)")
	flags.StringVar(&opts.cookie, "cookie", "", "Cookie header")
	flags.StringVar(&opts.proxy, "proxy", "", "HTTP(S) proxy URL")
	flags.BoolVar(&opts.insecure, "insecure", false, "Skip TLS verification")
	flags.BoolVar(&opts.json, "json", false, "Print the result as JSON")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&opts.noBanner, "no-banner", false, "Do not print the banner")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newReachCmd(opts), newRobotsCmd(opts), newSitemapCmd(opts))
	return root
}

// setup validates flags, configures logging and output, and builds the prober.
func (o *options) setup(cmd *cobra.Command) error {
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix:          "siteprobe",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	logger.SetLevel(log.WarnLevel)
	if o.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)

	if o.noColor {
		statuscolor.Disable()
	}

	if o.timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0 (got %s)", o.timeout)
	}
	if o.maxRedirects <= 0 {
		return fmt.Errorf("--max-redirects must be > 0 (got %d)", o.maxRedirects)
	}
	if o.randomAgent && o.userAgent != "" {
		return errors.New("--user-agent and --random-agent cannot be used together")
	}

	headerMap, err := toHeader(o.headers)
	if err != nil {
		return err
	}

	var proxyFunc func(*http.Request) (*url.URL, error)
	if o.proxy != "" {
		proxyURL, perr := url.Parse(o.proxy)
		if perr != nil {
			return fmt.Errorf("invalid proxy URL: %w", perr)
		}
		proxyFunc = http.ProxyURL(proxyURL)
	}

	userAgent := o.userAgent
	if o.randomAgent {
		userAgent = uarand.GetRandom()
	}

	client := httpclient.New(httpclient.Config{
		Timeout:  o.timeout,
		Proxy:    proxyFunc,
		Headers:  headerMap,
		Cookie:   o.cookie,
		Insecure: o.insecure,
	})
	o.prober = probe.New(client, probe.Config{
		UserAgent:    userAgent,
		Timeout:      o.timeout,
		MaxRedirects: o.maxRedirects,
	})

	cfg := o.prober.Config()
	log.Debug("config", "user_agent", cfg.UserAgent, "timeout", cfg.Timeout, "max_redirects", cfg.MaxRedirects,
		"headers", len(headerMap), "proxy", o.proxy, "insecure", o.insecure)

	if !o.noBanner && !o.json {
		banner.PrintBanner(cmd.ErrOrStderr())
	}
	return nil
}

func toHeader(headers []string) (http.Header, error) {
	hdr := make(http.Header)
	for _, h := range headers {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid header %q (expected Key: Value)", h)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			return nil, fmt.Errorf("invalid header %q (empty key)", h)
		}
		if strings.EqualFold(key, "User-Agent") {
			return nil, errors.New("set the User-Agent with --user-agent, not --header")
		}
		hdr.Add(key, value)
	}
	return hdr, nil
}

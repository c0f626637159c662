package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selimozcann/siteprobe/internal/output"
	"github.com/selimozcann/siteprobe/internal/probe"
	"github.com/selimozcann/siteprobe/internal/robots"
	"github.com/selimozcann/siteprobe/internal/sitemap"
)

func newReachCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reach <url>",
		Short: "Check whether a website is reachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.prober.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.json {
				return output.WriteJSON(cmd.OutOrStdout(), res)
			}
			return output.WriteReachability(cmd.OutOrStdout(), res)
		},
	}
}

func newRobotsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "robots <url>",
		Short: "Fetch and summarise a site's robots.txt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := robots.Fetch(cmd.Context(), opts.prober, args[0])
			if err != nil {
				return err
			}
			if opts.json {
				return output.WriteJSON(cmd.OutOrStdout(), rep)
			}
			return output.WriteRobots(cmd.OutOrStdout(), rep)
		},
	}
}

func newSitemapCmd(opts *options) *cobra.Command {
	var sitemapFile string
	cmd := &cobra.Command{
		Use:   "sitemap <url>",
		Short: "Look for a sitemap at well-known locations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := args[0]
			if _, err := probe.ValidateURL(base); err != nil {
				return &probe.Error{Kind: probe.InvalidURL, URL: base, Err: err}
			}
			paths := sitemap.DefaultCandidates
			if sitemapFile != "" {
				loaded, err := sitemap.LoadCandidates(sitemapFile)
				if err != nil {
					return err
				}
				paths = loaded
			}
			if len(paths) == 0 {
				return fmt.Errorf("no sitemap paths to check in %q", sitemapFile)
			}
			checks := sitemap.Check(cmd.Context(), opts.prober, base, paths)
			if opts.json {
				return output.WriteJSON(cmd.OutOrStdout(), checks)
			}
			return output.WriteSitemaps(cmd.OutOrStdout(), checks)
		},
	}
	cmd.Flags().StringVar(&sitemapFile, "sitemap-file", "", "File with candidate sitemap paths, one per line")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/filings-engine/internal/acquire"
	"github.com/pdiddy/filings-engine/internal/exchange"
	"github.com/pdiddy/filings-engine/internal/normalize"
	"github.com/pdiddy/filings-engine/internal/ratings"
	"github.com/pdiddy/filings-engine/internal/render"
	"github.com/pdiddy/filings-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "filings-engine/0.1"
	dateFlagLayout   = "2006-01-02"
)

var downloadCmd = &cobra.Command{
	Use:   "download SYMBOL",
	Short: "Download a company's filings as PDF artifacts",
	Long: `Download fetches the requested filing categories for one listed company
over a date range and writes every document as a PDF into a single flat
directory, together with the raw announcements feed and a per-run summary.

Categories: transcripts, investor_presentations, press_releases,
credit_rating, related_party_txns, annual_reports, issue_documents
(default: all).`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("from", "", "range start, YYYY-MM-DD (required)")
	downloadCmd.Flags().String("to", "", "range end, YYYY-MM-DD (required)")
	downloadCmd.Flags().String("out", "artifacts", "flat output directory")
	downloadCmd.Flags().StringSlice("categories", nil, "categories to fetch (default all)")
	downloadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	downloadCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	downloadCmd.Flags().Bool("annual-reports-all", false, "fetch the full annual report history, not just the range years")

	downloadCmd.MarkFlagRequired("from")
	downloadCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	symbol := args[0]

	fromStr, _ := cmd.Flags().GetString("from")
	from, err := time.Parse(dateFlagLayout, fromStr)
	if err != nil {
		return fmt.Errorf("invalid --from date %q: expected YYYY-MM-DD", fromStr)
	}
	toStr, _ := cmd.Flags().GetString("to")
	to, err := time.Parse(dateFlagLayout, toStr)
	if err != nil {
		return fmt.Errorf("invalid --to date %q: expected YYYY-MM-DD", toStr)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	outDir, _ := cmd.Flags().GetString("out")
	catNames, _ := cmd.Flags().GetStringSlice("categories")
	annualAll, _ := cmd.Flags().GetBool("annual-reports-all")

	categories, err := parseCategories(catNames)
	if err != nil {
		return err
	}

	httpCfg := types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent}
	client := &http.Client{Timeout: timeout}

	// The browser starts lazily: runs that only see native PDFs never
	// launch Chrome.
	lazy := render.NewLazy(func(ctx context.Context) (render.Renderer, error) {
		return render.NewChrome(ctx, types.RenderConfig{})
	})
	defer lazy.Close()

	deps := acquire.Deps{
		Exchange:   exchange.NewClient(httpCfg),
		Normalizer: normalize.New(client, lazy, httpCfg),
		Ratings: func(list func(ctx context.Context) ([]types.AnnouncementRecord, error)) acquire.RatingsResolver {
			return &ratings.Resolver{
				Primary:  ratings.NewScreenerSource(client, httpCfg, symbol),
				Fallback: ratings.NewFeedSource(list),
			}
		},
	}

	opts := acquire.Options{
		Symbol:           symbol,
		From:             from,
		To:               to,
		Categories:       categories,
		OutDir:           outDir,
		AnnualReportsAll: annualAll,
		DownloadDelay:    delay,
	}

	result, err := acquire.Run(cmd.Context(), opts, deps, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed acquisition", result.TotalFailed())
	}
	return nil
}

func parseCategories(names []string) ([]types.Category, error) {
	if len(names) == 0 {
		return nil, nil
	}
	valid := make(map[types.Category]bool, len(types.AllCategories))
	for _, c := range types.AllCategories {
		valid[c] = true
	}
	var cats []types.Category
	for _, name := range names {
		c := types.Category(name)
		if !valid[c] {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

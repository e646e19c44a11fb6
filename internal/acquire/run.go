// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire orchestrates a full filings acquisition run: validate,
// enumerate per category, normalize, and summarize.
// Implements: prd007-orchestration (R1-R6);
//
//	docs/ARCHITECTURE § Orchestration.
package acquire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/filings-engine/internal/category"
	"github.com/pdiddy/filings-engine/internal/exchange"
	"github.com/pdiddy/filings-engine/internal/naming"
	"github.com/pdiddy/filings-engine/internal/ratings"
	"github.com/pdiddy/filings-engine/pkg/types"
)

const defaultParallelism = 3

// Exchange is the slice of the exchange client the orchestrator needs.
type Exchange interface {
	ValidateSymbol(ctx context.Context, symbol string) (bool, error)
	Announcements(ctx context.Context, symbol string, from, to time.Time) ([]types.AnnouncementRecord, error)
	AnnualReports(ctx context.Context, symbol string) ([]exchange.AnnualReportDoc, error)
	IssueDocuments(ctx context.Context, symbol string) ([]exchange.IssueDoc, error)
}

// Normalizer turns one reference into one artifact.
type Normalizer interface {
	Normalize(ctx context.Context, ref types.DocumentReference, destPath string) (types.Artifact, error)
}

// RatingsResolver resolves credit rating documents across source tiers.
type RatingsResolver interface {
	Resolve(ctx context.Context, from, to time.Time) (ratings.Resolution, error)
}

// ResolverFactory builds the per-run ratings resolver. The feed lister it
// receives serves the run's already-fetched announcements, so the fallback
// tier costs no extra round-trip.
type ResolverFactory func(list func(ctx context.Context) ([]types.AnnouncementRecord, error)) RatingsResolver

// Options configures one acquisition run.
type Options struct {
	Symbol     string
	From, To   time.Time
	Categories []types.Category

	// OutDir is the flat destination directory.
	OutDir string

	// AnnualReportsAll disables year-range filtering of the annual report
	// listing.
	AnnualReportsAll bool

	// Parallelism bounds concurrent category processing (default 3).
	Parallelism int

	// DownloadDelay spaces consecutive downloads within a category.
	DownloadDelay time.Duration
}

// Deps are the run's collaborators.
type Deps struct {
	Exchange   Exchange
	Normalizer Normalizer
	Ratings    ResolverFactory
}

// Run executes an acquisition. The returned error is run-fatal (bad input,
// unknown symbol, unwritable destination); per-document and per-category
// problems are recorded in the result instead. Progress goes to w.
func Run(ctx context.Context, opts Options, deps Deps, w io.Writer) (*types.AcquisitionResult, error) {
	if opts.Symbol == "" {
		return nil, &types.ValidationError{Reason: "symbol is required"}
	}
	if opts.To.Before(opts.From) {
		return nil, &types.ValidationError{Reason: "date range end precedes start"}
	}
	if opts.OutDir == "" {
		return nil, &types.ValidationError{Reason: "output directory is required"}
	}
	if len(opts.Categories) == 0 {
		opts.Categories = types.AllCategories
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = defaultParallelism
	}

	// The symbol check runs before anything else touches the network, so a
	// typo costs one request instead of a full run.
	ok, err := deps.Exchange.ValidateSymbol(ctx, opts.Symbol)
	if err != nil {
		return nil, fmt.Errorf("validating symbol: %w", err)
	}
	if !ok {
		return nil, &types.ValidationError{Reason: fmt.Sprintf("unknown symbol %q", opts.Symbol)}
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	run := &runState{
		opts:   opts,
		deps:   deps,
		result: types.NewAcquisitionResult(),
		namer:  naming.NewNamer(),
		w:      &syncWriter{w: w},
	}

	if needsFeed(opts.Categories) {
		run.fetchFeed(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for _, cat := range opts.Categories {
		g.Go(func() error {
			run.processCategory(gctx, cat)
			return nil
		})
	}
	// Category goroutines never return errors; Wait only surfaces ctx
	// cancellation ordering.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return run.result, err
	}

	if err := run.writeSummary(); err != nil {
		return run.result, err
	}

	fmt.Fprintf(w, "\nRun summary: %d succeeded, %d failed\n",
		run.result.TotalSucceeded(), run.result.TotalFailed())
	return run.result, nil
}

// runState carries the shared pieces of one run across category goroutines.
type runState struct {
	opts   Options
	deps   Deps
	result *types.AcquisitionResult
	namer  *naming.Namer
	w      io.Writer

	feedOnce sync.Once
	feed     []types.AnnouncementRecord
	feedErr  error
}

// needsFeed reports whether any requested category reads the announcements
// feed. Annual reports and issue documents come from their own listings;
// credit ratings only touch the feed on fallback, but the resolver needs it
// available.
func needsFeed(cats []types.Category) bool {
	for _, cat := range cats {
		if cat != types.CategoryAnnualReports && cat != types.CategoryIssueDocuments {
			return true
		}
	}
	return false
}

// fetchFeed pulls the announcements feed once and dumps it alongside the
// artifacts for auditability. Failure is not run-fatal: each feed-dependent
// category records it separately.
func (run *runState) fetchFeed(ctx context.Context) {
	run.feedOnce.Do(func() {
		run.feed, run.feedErr = run.deps.Exchange.Announcements(ctx, run.opts.Symbol, run.opts.From, run.opts.To)
		if run.feedErr != nil {
			fmt.Fprintf(run.w, "warning: announcements feed fetch failed: %v\n", run.feedErr)
			return
		}
		fmt.Fprintf(run.w, "fetched %d announcements for %s\n", len(run.feed), run.opts.Symbol)
		run.dumpFeed()
	})
}

// dumpFeed writes the raw feed records to <symbol>_announcements.json.
func (run *runState) dumpFeed() {
	path := filepath.Join(run.opts.OutDir, run.opts.Symbol+"_announcements.json")
	data, err := json.MarshalIndent(run.feed, "", "  ")
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		fmt.Fprintf(run.w, "warning: writing %s: %v\n", path, err)
	}
}

// listFeed hands the cached feed to the ratings fallback.
func (run *runState) listFeed(ctx context.Context) ([]types.AnnouncementRecord, error) {
	run.fetchFeed(ctx)
	return run.feed, run.feedErr
}

func (run *runState) processCategory(ctx context.Context, cat types.Category) {
	switch cat {
	case types.CategoryCreditRating:
		run.processRatings(ctx)
	case types.CategoryAnnualReports:
		run.processAnnualReports(ctx)
	case types.CategoryIssueDocuments:
		run.processIssueDocuments(ctx)
	default:
		run.processFeedCategory(ctx, cat)
	}
}

// processFeedCategory normalizes the feed records classified into cat.
func (run *runState) processFeedCategory(ctx context.Context, cat types.Category) {
	if run.feedErr != nil {
		run.result.RecordCategoryFailure(cat, types.Failure{
			Ref:     types.DocumentReference{Category: cat, Symbol: run.opts.Symbol},
			Kind:    types.FailFetch,
			Message: run.feedErr.Error(),
		})
		return
	}

	var refs []types.DocumentReference
	for _, rec := range run.feed {
		c, ok := category.Classify(rec)
		if !ok || c != cat {
			continue
		}
		refs = append(refs, category.Reference(rec, cat))
	}
	run.normalizeAll(ctx, cat, refs)
}

// processRatings resolves and normalizes the credit rating trail. A primary
// tier where every normalization failed is recorded as the source being
// unavailable: re-resolving through the fallback here would make the run's
// provenance depend on transient download luck.
func (run *runState) processRatings(ctx context.Context) {
	cat := types.CategoryCreditRating
	resolver := run.deps.Ratings(run.listFeed)

	res, err := resolver.Resolve(ctx, run.opts.From, run.opts.To)
	if err != nil {
		run.result.RecordCategoryFailure(cat, types.Failure{
			Ref:     types.DocumentReference{Category: cat, Symbol: run.opts.Symbol},
			Kind:    types.KindOfError(err),
			Message: err.Error(),
		})
		return
	}

	fmt.Fprintf(run.w, "credit_rating: %d documents via %s source\n", len(res.Refs), res.Tier)
	succeeded := run.normalizeAll(ctx, cat, res.Refs)

	if res.Tier == types.TierPrimary && len(res.Refs) > 0 && succeeded == 0 {
		run.result.RecordCategoryFailure(cat, types.Failure{
			Ref:     types.DocumentReference{Category: cat, Symbol: run.opts.Symbol, Source: res.Tier},
			Kind:    types.FailSourceUnavailable,
			Message: "every primary document failed to normalize; fallback not consulted",
		})
	}
}

// processAnnualReports enumerates the full-history listing, filtered to the
// run's year range unless the run asked for everything.
func (run *runState) processAnnualReports(ctx context.Context) {
	cat := types.CategoryAnnualReports

	docs, err := run.deps.Exchange.AnnualReports(ctx, run.opts.Symbol)
	if err != nil {
		run.result.RecordCategoryFailure(cat, types.Failure{
			Ref:     types.DocumentReference{Category: cat, Symbol: run.opts.Symbol},
			Kind:    types.FailFetch,
			Message: err.Error(),
		})
		return
	}

	var refs []types.DocumentReference
	for _, doc := range docs {
		if !run.opts.AnnualReportsAll &&
			(doc.ToYear < run.opts.From.Year() || doc.FromYear > run.opts.To.Year()) {
			continue
		}
		refs = append(refs, types.DocumentReference{
			Source:      types.TierPrimary,
			URL:         doc.URL,
			Kind:        types.KindUnknown,
			Category:    cat,
			Symbol:      run.opts.Symbol,
			Description: fmt.Sprintf("annual report %d-%d", doc.FromYear, doc.ToYear),
			// The listing carries fiscal years, not publication dates.
			DateKnown: false,
		})
	}
	run.normalizeAll(ctx, cat, refs)
}

// processIssueDocuments enumerates the offer-document listings: IPO offer
// documents, rights and QIP issues, information memoranda, schemes of
// arrangement. The listings span a company's whole life, so no date filter
// applies.
func (run *runState) processIssueDocuments(ctx context.Context) {
	cat := types.CategoryIssueDocuments

	docs, err := run.deps.Exchange.IssueDocuments(ctx, run.opts.Symbol)
	if err != nil {
		run.result.RecordCategoryFailure(cat, types.Failure{
			Ref:     types.DocumentReference{Category: cat, Symbol: run.opts.Symbol},
			Kind:    types.FailFetch,
			Message: err.Error(),
		})
		return
	}

	refs := make([]types.DocumentReference, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, types.DocumentReference{
			Source:      types.TierPrimary,
			URL:         doc.URL,
			Kind:        types.KindUnknown,
			Category:    cat,
			Symbol:      run.opts.Symbol,
			Description: doc.Label,
			// The listings carry filing metadata, not publication dates.
			DateKnown: false,
		})
	}
	run.normalizeAll(ctx, cat, refs)
}

// normalizeAll processes refs sequentially, spacing downloads by the
// configured delay, and returns how many succeeded.
func (run *runState) normalizeAll(ctx context.Context, cat types.Category, refs []types.DocumentReference) int {
	succeeded := 0
	for i, ref := range refs {
		if ctx.Err() != nil {
			return succeeded
		}
		if i > 0 && run.opts.DownloadDelay > 0 {
			time.Sleep(run.opts.DownloadDelay)
		}

		run.result.RecordAttempt(cat)
		name := run.namer.Assign(ref, "pdf")
		dest := filepath.Join(run.opts.OutDir, name)

		art, err := run.deps.Normalizer.Normalize(ctx, ref, dest)
		if err != nil {
			fmt.Fprintf(run.w, "failed:  %s (%v)\n", name, err)
			run.result.RecordFailure(cat, types.Failure{
				Ref:     ref,
				Kind:    types.KindOfError(err),
				Message: err.Error(),
			})
			continue
		}
		succeeded++
		run.result.RecordSuccess(cat)
		fmt.Fprintf(run.w, "written: %s (%d bytes)\n", name, art.Size)
	}
	return succeeded
}

// runSummary is the YAML shape of <symbol>_run.yaml.
type runSummary struct {
	Symbol     string                                   `yaml:"symbol"`
	From       string                                   `yaml:"from"`
	To         string                                   `yaml:"to"`
	Categories map[types.Category]types.CategoryOutcome `yaml:"categories"`
	Failures   []types.Failure                          `yaml:"failures,omitempty"`
}

func (run *runState) writeSummary() error {
	summary := runSummary{
		Symbol:     run.opts.Symbol,
		From:       run.opts.From.Format("2006-01-02"),
		To:         run.opts.To.Format("2006-01-02"),
		Categories: run.result.Outcomes(),
		Failures:   run.result.Failures(),
	}
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling run summary: %w", err)
	}
	path := filepath.Join(run.opts.OutDir, run.opts.Symbol+"_run.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run summary: %w", err)
	}
	return nil
}

// syncWriter serializes progress lines from concurrent categories.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratings

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/filings-engine/internal/httputil"
	"github.com/pdiddy/filings-engine/pkg/types"
)

// screenerBaseURL is the aggregator site. Declared as a var so tests can
// substitute an httptest server.
var screenerBaseURL = "https://www.screener.in"

// icraViewerRe matches ICRA's rationale viewer URLs. The viewer wraps a PDF
// that is directly addressable by ID, so the URL is rewritten rather than
// unwrapped at normalization time.
var icraViewerRe = regexp.MustCompile(`(?i)ShowRationaleReport/?\?Id=(\d+)`)

// ScreenerSource lists credit rating documents from the aggregator's company
// page. It covers the full rating history of a company, not just a window.
type ScreenerSource struct {
	client *http.Client
	cfg    types.HTTPConfig
	symbol string
}

// NewScreenerSource builds a source for one company.
func NewScreenerSource(client *http.Client, cfg types.HTTPConfig, symbol string) *ScreenerSource {
	return &ScreenerSource{client: client, cfg: cfg, symbol: symbol}
}

// Name identifies the source in resolver errors.
func (s *ScreenerSource) Name() string { return "screener" }

// Enumerate scrapes the company page's credit-ratings block. The block is
// only trusted when its heading really reads "credit ratings"; the page
// reuses the documents markup for other sections.
func (s *ScreenerSource) Enumerate(ctx context.Context) ([]types.DocumentReference, error) {
	pageURL := fmt.Sprintf("%s/company/%s/", screenerBaseURL, url.PathEscape(s.symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, s.client, req)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.FetchError{URL: pageURL, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Err: err}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Err: err}
	}

	var refs []types.DocumentReference
	doc.Find("div.documents.credit-ratings").Each(func(_ int, block *goquery.Selection) {
		heading := strings.ToLower(strings.TrimSpace(block.Find("h3").First().Text()))
		if !strings.Contains(heading, "credit ratings") {
			return
		}
		block.Find("ul.list-links a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			href = strings.TrimSpace(href)
			if href == "" {
				return
			}

			caption := strings.TrimSpace(a.Find("div.ink-600.smaller").First().Text())
			title := linkTitle(a)
			if title == "" {
				title = caption
			}

			rel, parseErr := url.Parse(href)
			if parseErr != nil {
				return
			}
			docURL, kind := classifyRatingURL(base.ResolveReference(rel).String())

			refs = append(refs, types.DocumentReference{
				Source:      types.TierPrimary,
				URL:         docURL,
				Kind:        kind,
				Category:    types.CategoryCreditRating,
				Symbol:      s.symbol,
				Description: describeRating(title, caption),
				// Captions carry day and month but no year, so the date
				// stays unknown.
				DateKnown: false,
			})
		})
	})
	return refs, nil
}

// classifyRatingURL rewrites ICRA viewer URLs to the direct PDF form and
// infers the document kind from the URL shape.
func classifyRatingURL(docURL string) (string, types.DocKind) {
	if m := icraViewerRe.FindStringSubmatch(docURL); m != nil {
		return icraViewerRe.ReplaceAllString(docURL, "ShowRationalReportFilePdf/"+m[1]), types.KindPDF
	}
	lower := strings.ToLower(docURL)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return docURL, types.KindPDF
	case strings.Contains(lower, "rationale") || strings.Contains(lower, "?id="):
		// Agency rationale pages wrap the actual document.
		return docURL, types.KindViewer
	default:
		return docURL, types.KindUnknown
	}
}

// linkTitle extracts the anchor's visible title, excluding the caption div.
func linkTitle(a *goquery.Selection) string {
	clone := a.Clone()
	clone.Find("div").Remove()
	return strings.Join(strings.Fields(clone.Text()), " ")
}

// describeRating joins the link title and its caption ("4 Jul from icra")
// into one description for naming.
func describeRating(title, caption string) string {
	switch {
	case title == "" && caption == "":
		return "credit rating"
	case caption == "" || title == caption:
		return title
	case title == "":
		return caption
	default:
		return title + " " + caption
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package exchange talks to the stock exchange's public JSON API: symbol
// validation, the corporate announcements feed, and the annual reports list.
// Implements: prd002-exchange (R1-R4);
//
//	docs/ARCHITECTURE § Exchange Feed.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/filings-engine/internal/httputil"
	"github.com/pdiddy/filings-engine/pkg/types"
)

// Endpoint bases, declared as vars so tests can substitute httptest servers.
var (
	quoteAPIBase         = "https://www.nseindia.com/api/quote-equity"
	announcementsAPIBase = "https://www.nseindia.com/api/corporate-announcements"
	annualReportsAPIBase = "https://www.nseindia.com/api/annual-reports"
	homepageURL          = "https://www.nseindia.com/"
)

// feedDateLayouts are the timestamp formats seen in the announcements feed,
// tried in order. A record whose timestamp matches neither keeps a zero date
// rather than failing the whole fetch.
var feedDateLayouts = []string{
	"02-Jan-2006 15:04:05",
	"2006-01-02 15:04:05",
}

// queryDateLayout is the dd-mm-yyyy format the feed endpoint expects for its
// from_date/to_date parameters.
const queryDateLayout = "02-01-2006"

// Client issues exchange API requests. The exchange refuses requests that
// arrive without a browser-ish User-Agent and session cookies, so the client
// keeps a cookie jar and primes it with a homepage visit before the first
// API call.
type Client struct {
	http   *http.Client
	cfg    types.HTTPConfig
	primed bool
}

// NewClient constructs an exchange client from the shared HTTP settings.
func NewClient(cfg types.HTTPConfig) *Client {
	jar, _ := cookiejar.New(nil)
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout, Jar: jar},
		cfg:  cfg,
	}
}

// ValidateSymbol reports whether the exchange knows the ticker. A quote
// response with price info means the symbol trades; a response without one
// means the symbol does not exist. Transport failures are returned as errors
// so the caller can distinguish "unknown ticker" from "exchange down".
func (c *Client) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	q := url.Values{"symbol": {symbol}}
	body, err := c.get(ctx, quoteAPIBase+"?"+q.Encode())
	if err != nil {
		return false, fmt.Errorf("validating symbol %s: %w", symbol, err)
	}

	var quote struct {
		PriceInfo map[string]any `json:"priceInfo"`
	}
	if err := json.Unmarshal(body, &quote); err != nil {
		return false, fmt.Errorf("parsing quote for %s: %w", symbol, err)
	}
	return len(quote.PriceInfo) > 0, nil
}

// announcementItem mirrors the feed's JSON field names.
type announcementItem struct {
	Symbol         string `json:"symbol"`
	Description    string `json:"desc"`
	AttachmentText string `json:"attchmntText"`
	AttachmentFile string `json:"attchmntFile"`
	AnnouncedAt    string `json:"an_dt"`
}

// Announcements fetches the corporate announcements feed for a symbol over
// the inclusive date window. Records are returned in feed order; entries with
// unparseable timestamps keep a zero date.
func (c *Client) Announcements(ctx context.Context, symbol string, from, to time.Time) ([]types.AnnouncementRecord, error) {
	q := url.Values{
		"index":     {"equities"},
		"symbol":    {symbol},
		"from_date": {from.Format(queryDateLayout)},
		"to_date":   {to.Format(queryDateLayout)},
	}
	body, err := c.get(ctx, announcementsAPIBase+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching announcements for %s: %w", symbol, err)
	}

	var items []announcementItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parsing announcements for %s: %w", symbol, err)
	}

	records := make([]types.AnnouncementRecord, 0, len(items))
	for _, it := range items {
		records = append(records, types.AnnouncementRecord{
			Symbol:         symbol,
			Date:           parseFeedDate(it.AnnouncedAt),
			Description:    strings.TrimSpace(it.Description),
			AttachmentText: strings.TrimSpace(it.AttachmentText),
			AttachmentURL:  strings.TrimSpace(it.AttachmentFile),
		})
	}
	return records, nil
}

// AnnualReportDoc is one entry of the annual reports list: a fiscal-year
// span and the document URL.
type AnnualReportDoc struct {
	FromYear int
	ToYear   int
	URL      string
}

// AnnualReports fetches the full annual-report history for a symbol. Entries
// with no usable URL are dropped.
func (c *Client) AnnualReports(ctx context.Context, symbol string) ([]AnnualReportDoc, error) {
	q := url.Values{"index": {"equities"}, "symbol": {symbol}}
	body, err := c.get(ctx, annualReportsAPIBase+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetching annual reports for %s: %w", symbol, err)
	}

	var payload struct {
		Data []struct {
			FromYear flexYear `json:"fromYr"`
			ToYear   flexYear `json:"toYr"`
			FileName string   `json:"fileName"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing annual reports for %s: %w", symbol, err)
	}

	docs := make([]AnnualReportDoc, 0, len(payload.Data))
	for _, d := range payload.Data {
		u := strings.TrimSpace(d.FileName)
		if u == "" {
			continue
		}
		docs = append(docs, AnnualReportDoc{
			FromYear: int(d.FromYear),
			ToYear:   int(d.ToYear),
			URL:      u,
		})
	}
	return docs, nil
}

// flexYear tolerates the API serializing years as either numbers or strings.
type flexYear int

func (y *flexYear) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parsing year %q: %w", s, err)
	}
	*y = flexYear(n)
	return nil
}

// get performs an authenticated-looking GET with the retry policy and
// returns the response body. The first call primes the cookie jar.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if !c.primed {
		c.prime(ctx)
		c.primed = true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := httputil.DoWithRetry(ctx, c.http, req)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.FetchError{URL: rawURL, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	return body, nil
}

// prime visits the homepage once to collect session cookies. Failure is not
// fatal: the API request itself will fail with a clearer error if the
// exchange is actually unreachable.
func (c *Client) prime(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, homepageURL, nil)
	if err != nil {
		return
	}
	c.setHeaders(req)
	if resp, err := c.http.Do(req); err == nil {
		resp.Body.Close()
	}
}

func (c *Client) setHeaders(req *http.Request) {
	ua := c.cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", homepageURL)
}

func parseFeedDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

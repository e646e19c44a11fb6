// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// issueDocsAPIBase prefixes the offer-document endpoint paths. A var so tests
// can substitute an httptest server.
var issueDocsAPIBase = "https://www.nseindia.com/api"

// issueEndpoint describes one issue-document listing. Only the rights-issue
// listing carries a trustworthy symbol field; the rest key records by company
// name, so matching falls back to the name resolved from the equity quote.
type issueEndpoint struct {
	label            string
	path             string
	params           url.Values
	attachmentFields []string
	symbolReliable   bool
}

var issueEndpoints = []issueEndpoint{
	{
		label:            "offer document",
		path:             "/corporates/offerdocs",
		params:           url.Values{"index": {"equities"}},
		attachmentFields: []string{"fpAttach"},
	},
	{
		label:            "rights issue",
		path:             "/corporates/offerdocs/rights",
		params:           url.Values{"index": {"equities"}},
		attachmentFields: []string{"draftAttch", "finalAttach"},
		symbolReliable:   true,
	},
	{
		label:            "qip offer",
		path:             "/corporates/offerdocs/rights",
		params:           url.Values{"index": {"qip"}},
		attachmentFields: []string{"attachFile"},
	},
	{
		label:            "information memorandum",
		path:             "/corporates/offerdocs/arrangementscheme/infomemo",
		attachmentFields: []string{"date_attachmnt"},
	},
	{
		label:            "scheme of arrangement",
		path:             "/corporates/offerdocs/arrangementscheme",
		attachmentFields: []string{"date_attachmnt"},
	},
}

// IssueDoc is one capital-raise document: an IPO offer document, rights or
// QIP issue attachment, information memorandum, or scheme of arrangement.
type IssueDoc struct {
	Label string
	URL   string
}

// CompanyName resolves the listed company's full name from the equity quote.
func (c *Client) CompanyName(ctx context.Context, symbol string) (string, error) {
	q := url.Values{"symbol": {symbol}}
	body, err := c.get(ctx, quoteAPIBase+"?"+q.Encode())
	if err != nil {
		return "", fmt.Errorf("resolving company name for %s: %w", symbol, err)
	}

	var quote struct {
		Info struct {
			CompanyName string `json:"companyName"`
		} `json:"info"`
	}
	if err := json.Unmarshal(body, &quote); err != nil {
		return "", fmt.Errorf("parsing quote for %s: %w", symbol, err)
	}
	return strings.TrimSpace(quote.Info.CompanyName), nil
}

// IssueDocuments enumerates the company's issue documents across every
// offer-document listing. The listings cover all companies, so records are
// filtered to the symbol (or the resolved company name where the listing's
// symbol field is unreliable). A listing that fails to fetch is skipped; an
// error is returned only when every listing fails.
func (c *Client) IssueDocuments(ctx context.Context, symbol string) ([]IssueDoc, error) {
	// A failed name resolution is not fatal: the symbol-keyed listing still
	// works, and name-keyed listings simply match nothing.
	company, _ := c.CompanyName(ctx, symbol)

	var docs []IssueDoc
	var firstErr error
	failed := 0
	for _, ep := range issueEndpoints {
		items, err := c.issueListing(ctx, ep)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, item := range items {
			if !issueMatches(item, ep.symbolReliable, symbol, company) {
				continue
			}
			for _, field := range ep.attachmentFields {
				if u := issueAttachment(item[field]); u != "" {
					docs = append(docs, IssueDoc{Label: ep.label, URL: u})
				}
			}
		}
	}
	if failed == len(issueEndpoints) {
		return nil, fmt.Errorf("fetching issue documents for %s: %w", symbol, firstErr)
	}
	return docs, nil
}

func (c *Client) issueListing(ctx context.Context, ep issueEndpoint) ([]map[string]any, error) {
	rawURL := issueDocsAPIBase + ep.path
	if len(ep.params) > 0 {
		rawURL += "?" + ep.params.Encode()
	}
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// Some listings are bare arrays, some wrap the records in "data".
	var items []map[string]any
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}
	var wrapped struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing %s listing: %w", ep.label, err)
	}
	return wrapped.Data, nil
}

// issueMatches reports whether a listing record belongs to the company.
// Symbol-keyed listings compare tickers; the rest match when either the
// record's company field contains the resolved name or vice versa, since the
// listings abbreviate names inconsistently.
func issueMatches(item map[string]any, bySymbol bool, symbol, company string) bool {
	if bySymbol {
		s, _ := item["symbol"].(string)
		return strings.EqualFold(strings.TrimSpace(s), symbol)
	}
	if company == "" {
		return false
	}
	rec, _ := item["company"].(string)
	rec = strings.ToLower(strings.TrimSpace(rec))
	if rec == "" {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(company))
	return strings.Contains(rec, name) || strings.Contains(name, rec)
}

// issueAttachment extracts an attachment URL, dropping the listings' empty
// sentinels ("-", "null").
func issueAttachment(v any) string {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "null" {
		return ""
	}
	return s
}

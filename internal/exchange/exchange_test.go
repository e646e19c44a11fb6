// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/filings-engine/pkg/types"
)

// newTestClient points every endpoint var at ts and returns a client that
// needs no homepage priming.
func newTestClient(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	oldQuote, oldAnn, oldAR, oldIssue, oldHome := quoteAPIBase, announcementsAPIBase, annualReportsAPIBase, issueDocsAPIBase, homepageURL
	quoteAPIBase = ts.URL + "/api/quote-equity"
	announcementsAPIBase = ts.URL + "/api/corporate-announcements"
	annualReportsAPIBase = ts.URL + "/api/annual-reports"
	issueDocsAPIBase = ts.URL + "/api"
	homepageURL = ts.URL + "/"
	t.Cleanup(func() {
		quoteAPIBase, announcementsAPIBase, annualReportsAPIBase, issueDocsAPIBase, homepageURL = oldQuote, oldAnn, oldAR, oldIssue, oldHome
	})
	c := NewClient(types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "filings-engine-test/0.1"})
	c.http = ts.Client()
	return c
}

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"known symbol", `{"priceInfo":{"lastPrice":1643.5}}`, true},
		{"unknown symbol", `{}`, false},
		{"empty price info", `{"priceInfo":{}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/quote-equity" {
					w.WriteHeader(http.StatusOK)
					return
				}
				if got := r.URL.Query().Get("symbol"); got != "HDFCBANK" {
					t.Errorf("symbol query = %q, want HDFCBANK", got)
				}
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := newTestClient(t, ts)
			ok, err := c.ValidateSymbol(context.Background(), "HDFCBANK")
			if err != nil {
				t.Fatalf("ValidateSymbol: %v", err)
			}
			if ok != tt.want {
				t.Errorf("ValidateSymbol = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestValidateSymbolTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/quote-equity" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := newTestClient(t, ts)
	_, err := c.ValidateSymbol(context.Background(), "HDFCBANK")
	if err == nil {
		t.Fatal("expected error for HTTP 403, got nil")
	}
}

func TestAnnouncements(t *testing.T) {
	feed := `[
		{"symbol":"HDFCBANK","desc":"Credit Rating","attchmntText":"CARE rating letter","attchmntFile":"https://archives.test/cr.pdf","an_dt":"15-Mar-2024 18:30:00"},
		{"symbol":"HDFCBANK","desc":" Investor Presentation ","attchmntText":"","attchmntFile":"https://archives.test/ip.pdf","an_dt":"2024-02-01 09:00:00"},
		{"symbol":"HDFCBANK","desc":"Press Release","attchmntText":"","attchmntFile":"https://archives.test/pr.pdf","an_dt":"garbled"}
	]`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/corporate-announcements" {
			w.WriteHeader(http.StatusOK)
			return
		}
		q := r.URL.Query()
		if q.Get("from_date") != "01-01-2024" || q.Get("to_date") != "30-06-2024" {
			t.Errorf("date window = %q..%q, want 01-01-2024..30-06-2024", q.Get("from_date"), q.Get("to_date"))
		}
		w.Write([]byte(feed))
	}))
	defer ts.Close()

	c := newTestClient(t, ts)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	recs, err := c.Announcements(context.Background(), "HDFCBANK", from, to)
	if err != nil {
		t.Fatalf("Announcements: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}

	want0 := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	if !recs[0].Date.Equal(want0) {
		t.Errorf("record 0 date = %v, want %v", recs[0].Date, want0)
	}
	if recs[1].Description != "Investor Presentation" {
		t.Errorf("record 1 description = %q, want trimmed", recs[1].Description)
	}
	want1 := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	if !recs[1].Date.Equal(want1) {
		t.Errorf("record 1 date = %v, want %v (fallback layout)", recs[1].Date, want1)
	}
	if !recs[2].Date.IsZero() {
		t.Errorf("record 2 date = %v, want zero for unparseable timestamp", recs[2].Date)
	}
}

func TestAnnualReports(t *testing.T) {
	payload := `{"data":[
		{"fromYr":2023,"toYr":2024,"fileName":"https://archives.test/ar-2024.pdf"},
		{"fromYr":"2022","toYr":"2023","fileName":"https://archives.test/ar-2023.pdf"},
		{"fromYr":2021,"toYr":2022,"fileName":"  "}
	]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/annual-reports" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte(payload))
	}))
	defer ts.Close()

	c := newTestClient(t, ts)
	docs, err := c.AnnualReports(context.Background(), "HDFCBANK")
	if err != nil {
		t.Fatalf("AnnualReports: %v", err)
	}
	// The blank-URL entry is dropped.
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if docs[0].FromYear != 2023 || docs[0].ToYear != 2024 {
		t.Errorf("doc 0 years = %d-%d, want 2023-2024", docs[0].FromYear, docs[0].ToYear)
	}
	// Years arriving as JSON strings still parse.
	if docs[1].FromYear != 2022 || docs[1].ToYear != 2023 {
		t.Errorf("doc 1 years = %d-%d, want 2022-2023", docs[1].FromYear, docs[1].ToYear)
	}
}

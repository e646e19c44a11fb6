// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/filings-engine/pkg/types"
)

const companyPage = `<!DOCTYPE html>
<html><body>
<div class="documents annual-reports">
	<h3>Annual reports</h3>
	<ul class="list-links">
		<li><a href="https://archives.test/ar-2024.pdf">Financial Year 2024</a></li>
	</ul>
</div>
<div class="documents credit-ratings">
	<h3>Credit ratings</h3>
	<ul class="list-links">
		<li><a href="https://www.icra.in/Rationale/ShowRationaleReport/?Id=131290">
			Rating update
			<div class="ink-600 smaller">4 Jul from icra</div>
		</a></li>
		<li><a href="https://www.careratings.com/upload/HDFC-rationale.pdf">
			Rating update
			<div class="ink-600 smaller">20 Mar from care</div>
		</a></li>
		<li><a href="https://www.crisilratings.com/ratings/rationale?Id=998">
			Rating rationale
			<div class="ink-600 smaller">2 Jan from crisil</div>
		</a></li>
	</ul>
</div>
</body></html>`

func TestScreenerEnumerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/company/HDFCBANK/" {
			t.Errorf("path = %q, want /company/HDFCBANK/", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(companyPage))
	}))
	defer ts.Close()

	old := screenerBaseURL
	screenerBaseURL = ts.URL
	defer func() { screenerBaseURL = old }()

	s := NewScreenerSource(ts.Client(), types.HTTPConfig{UserAgent: "filings-engine-test/0.1"}, "HDFCBANK")
	refs, err := s.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	// Only the credit-ratings block contributes; the annual-reports block
	// with identical list markup must be ignored.
	if len(refs) != 3 {
		t.Fatalf("got %d refs, want 3", len(refs))
	}

	icra := refs[0]
	if icra.URL != "https://www.icra.in/Rationale/ShowRationalReportFilePdf/131290" {
		t.Errorf("ICRA URL not rewritten: %q", icra.URL)
	}
	if icra.Kind != types.KindPDF {
		t.Errorf("ICRA kind = %q, want pdf", icra.Kind)
	}
	if icra.DateKnown {
		t.Error("caption dates carry no year; DateKnown must be false")
	}
	if icra.Description != "Rating update 4 Jul from icra" {
		t.Errorf("ICRA description = %q", icra.Description)
	}
	if icra.Category != types.CategoryCreditRating {
		t.Errorf("category = %q", icra.Category)
	}

	if refs[1].Kind != types.KindPDF {
		t.Errorf("direct .pdf link kind = %q, want pdf", refs[1].Kind)
	}
	if refs[2].Kind != types.KindViewer {
		t.Errorf("rationale page kind = %q, want viewer", refs[2].Kind)
	}
}

func TestScreenerEnumerateNoRatingsBlock(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><div class="documents credit-ratings"><h3>Other documents</h3>
			<ul class="list-links"><li><a href="https://x.test/a.pdf">A</a></li></ul></div></body></html>`))
	}))
	defer ts.Close()

	old := screenerBaseURL
	screenerBaseURL = ts.URL
	defer func() { screenerBaseURL = old }()

	s := NewScreenerSource(ts.Client(), types.HTTPConfig{}, "HDFCBANK")
	refs, err := s.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("got %d refs from a mislabeled block, want 0", len(refs))
	}
}

func TestScreenerEnumerateHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	old := screenerBaseURL
	screenerBaseURL = ts.URL
	defer func() { screenerBaseURL = old }()

	s := NewScreenerSource(ts.Client(), types.HTTPConfig{}, "NOSUCH")
	if _, err := s.Enumerate(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
}

func TestClassifyRatingURL(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantURL  string
		wantKind types.DocKind
	}{
		{
			"icra viewer rewritten",
			"https://www.icra.in/Rationale/ShowRationaleReport/?Id=42",
			"https://www.icra.in/Rationale/ShowRationalReportFilePdf/42",
			types.KindPDF,
		},
		{
			"direct pdf",
			"https://www.careratings.com/doc.pdf",
			"https://www.careratings.com/doc.pdf",
			types.KindPDF,
		},
		{
			"rationale page",
			"https://www.crisilratings.com/ratings/rationale?Id=7",
			"https://www.crisilratings.com/ratings/rationale?Id=7",
			types.KindViewer,
		},
		{
			"unclassifiable",
			"https://agency.test/press/latest",
			"https://agency.test/press/latest",
			types.KindUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotURL, gotKind := classifyRatingURL(tt.in)
			if gotURL != tt.wantURL {
				t.Errorf("URL = %q, want %q", gotURL, tt.wantURL)
			}
			if gotKind != tt.wantKind {
				t.Errorf("kind = %q, want %q", gotKind, tt.wantKind)
			}
		})
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package category

import (
	"testing"
	"time"

	"github.com/pdiddy/filings-engine/pkg/types"
)

func record(desc, attText, attURL string) types.AnnouncementRecord {
	return types.AnnouncementRecord{
		Symbol:         "HDFCBANK",
		Date:           time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Description:    desc,
		AttachmentText: attText,
		AttachmentURL:  attURL,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		rec     types.AnnouncementRecord
		wantCat types.Category
		wantHit bool
	}{
		{
			"transcript",
			record("Analysts/Institutional Investor Meet/Con. Call Updates", "Earnings Call Transcript Q3", "https://ex.test/a.pdf"),
			types.CategoryTranscripts, true,
		},
		{
			"investor meet without transcript caption",
			record("Analysts/Institutional Investor Meet/Con. Call Updates", "Audio recording", "https://ex.test/a.mp3"),
			"", false,
		},
		{
			"investor presentation",
			record("Investor Presentation", "", "https://ex.test/deck.pdf"),
			types.CategoryInvestorPresentations, true,
		},
		{
			"press release",
			record("Press Release", "", "https://ex.test/pr.pdf"),
			types.CategoryPressReleases, true,
		},
		{
			"press release revised",
			record("Press Release (Revised)", "", "https://ex.test/pr2.pdf"),
			types.CategoryPressReleases, true,
		},
		{
			"credit rating",
			record("Credit Rating", "", "https://ex.test/cr.pdf"),
			types.CategoryCreditRating, true,
		},
		{
			"related party singular",
			record("Related Party Transaction", "", "https://ex.test/rpt.pdf"),
			types.CategoryRelatedPartyTxns, true,
		},
		{
			"related party plural",
			record("Related Party Transactions", "", "https://ex.test/rpt.pdf"),
			types.CategoryRelatedPartyTxns, true,
		},
		{
			"whitespace and case insensitive",
			record("  credit RATING  ", "", "https://ex.test/cr.pdf"),
			types.CategoryCreditRating, true,
		},
		{
			"no attachment never classifies",
			record("Credit Rating", "", ""),
			"", false,
		},
		{
			"unrelated subject dropped silently",
			record("Board Meeting Intimation", "", "https://ex.test/bm.pdf"),
			"", false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCat, gotHit := Classify(tt.rec)
			if gotHit != tt.wantHit {
				t.Fatalf("Classify() hit = %v, want %v", gotHit, tt.wantHit)
			}
			if gotCat != tt.wantCat {
				t.Errorf("Classify() category = %q, want %q", gotCat, tt.wantCat)
			}
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	rec := record("Investor Presentation", "", "https://ex.test/deck.pdf")
	first, _ := Classify(rec)
	for i := 0; i < 5; i++ {
		got, ok := Classify(rec)
		if !ok || got != first {
			t.Fatalf("call %d: Classify = (%q, %v), want (%q, true)", i, got, ok, first)
		}
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// Rules order must match the documented priority list exactly.
	want := []types.Category{
		types.CategoryTranscripts,
		types.CategoryInvestorPresentations,
		types.CategoryPressReleases,
		types.CategoryCreditRating,
		types.CategoryRelatedPartyTxns,
	}
	if len(Rules) != len(want) {
		t.Fatalf("len(Rules) = %d, want %d", len(Rules), len(want))
	}
	for i, cat := range want {
		if Rules[i].Category != cat {
			t.Errorf("Rules[%d] = %q, want %q", i, Rules[i].Category, cat)
		}
	}
}

func TestReferenceKindHint(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ct   string
		want types.DocKind
	}{
		{"pdf extension", "https://ex.test/doc.pdf", "", types.KindPDF},
		{"pdf content type", "https://ex.test/doc?id=1", "application/pdf", types.KindPDF},
		{"html extension", "https://ex.test/doc.html", "", types.KindHTML},
		{"htm extension", "https://ex.test/doc.htm", "", types.KindHTML},
		{"no hint", "https://ex.test/doc?id=1", "", types.KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record("Credit Rating", "", tt.url)
			rec.ContentType = tt.ct
			ref := Reference(rec, types.CategoryCreditRating)
			if ref.Kind != tt.want {
				t.Errorf("Reference kind = %q, want %q", ref.Kind, tt.want)
			}
			if ref.Source != types.TierPrimary {
				t.Errorf("Reference source = %q, want primary", ref.Source)
			}
			if !ref.DateKnown {
				t.Error("Reference should carry the record date")
			}
		})
	}
}

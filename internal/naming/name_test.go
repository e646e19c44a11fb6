// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package naming

import (
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/filings-engine/pkg/types"
)

func docRef(date time.Time, dateKnown bool, desc string) types.DocumentReference {
	return types.DocumentReference{
		Category:    types.CategoryCreditRating,
		Symbol:      "HDFCBANK",
		Description: desc,
		Date:        date,
		DateKnown:   dateKnown,
	}
}

func TestFilename(t *testing.T) {
	date := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	tests := []struct {
		name      string
		date      time.Time
		dateKnown bool
		desc      string
		want      string
	}{
		{
			"dated",
			date, true, "Rating update",
			"2024-03-15_credit_rating_hdfcbank_rating-update.pdf",
		},
		{
			"unknown date",
			time.Time{}, false, "Rating update 4 Jul from icra",
			"undated_credit_rating_hdfcbank_rating-update-4-jul-from-icra.pdf",
		},
		{
			"unsafe characters collapsed",
			date, true, "Q4 / FY-24 :: results!!",
			"2024-03-15_credit_rating_hdfcbank_q4-fy-24-results.pdf",
		},
		{
			"empty description",
			date, true, "",
			"2024-03-15_credit_rating_hdfcbank_document.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filename(tt.date, tt.dateKnown, types.CategoryCreditRating, "HDFCBANK", tt.desc, "pdf")
			if got != tt.want {
				t.Errorf("Filename = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilenameDescriptionBudget(t *testing.T) {
	long := strings.Repeat("board approved the reappointment ", 10)
	got := Filename(time.Time{}, false, types.CategoryPressReleases, "TCS", long, "pdf")

	parts := strings.Split(strings.TrimSuffix(got, ".pdf"), "_")
	desc := parts[len(parts)-1]
	if len(desc) > 60 {
		t.Errorf("description segment is %d chars, budget is 60: %q", len(desc), desc)
	}
	if strings.HasSuffix(desc, "-") {
		t.Errorf("truncation left a trailing hyphen: %q", desc)
	}
}

func TestNamerCollisions(t *testing.T) {
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	n := NewNamer()

	first := n.Assign(docRef(date, true, "Rating update"), "pdf")
	second := n.Assign(docRef(date, true, "Rating update"), "pdf")
	third := n.Assign(docRef(date, true, "Rating update"), "pdf")
	other := n.Assign(docRef(date, true, "Rating withdrawn"), "pdf")

	if first != "2024-05-02_credit_rating_hdfcbank_rating-update.pdf" {
		t.Errorf("first = %q", first)
	}
	if second != "2024-05-02_credit_rating_hdfcbank_rating-update_2.pdf" {
		t.Errorf("second = %q", second)
	}
	if third != "2024-05-02_credit_rating_hdfcbank_rating-update_3.pdf" {
		t.Errorf("third = %q", third)
	}
	if other != "2024-05-02_credit_rating_hdfcbank_rating-withdrawn.pdf" {
		t.Errorf("non-colliding name got a suffix: %q", other)
	}
}

func TestNamerDeterministicAcrossRuns(t *testing.T) {
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	refs := []types.DocumentReference{
		docRef(date, true, "Rating update"),
		docRef(date, true, "Rating update"),
		docRef(time.Time{}, false, "Rating update"),
		docRef(date, true, "Rating update"),
	}

	run := func() []string {
		n := NewNamer()
		var names []string
		for _, ref := range refs {
			names = append(names, n.Assign(ref, "pdf"))
		}
		return names
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("name %d differs across runs: %q vs %q", i, a[i], b[i])
		}
	}
	seen := make(map[string]bool)
	for _, name := range a {
		if seen[name] {
			t.Errorf("duplicate name %q", name)
		}
		seen[name] = true
	}
}

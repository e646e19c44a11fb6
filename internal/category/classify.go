// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package category classifies announcement records into document categories.
// Implements: prd001-categories (R1-R3);
//
//	docs/ARCHITECTURE § Classification.
package category

import (
	"strings"

	"github.com/pdiddy/filings-engine/pkg/types"
)

// Rule pairs a category with its predicate. Rules are evaluated in slice
// order and the first match wins, so priority is auditable here rather than
// decided at runtime.
type Rule struct {
	Category types.Category
	Match    func(rec types.AnnouncementRecord) bool
}

// Rules is the ordered predicate table. Every predicate operates on the
// trimmed, lower-cased description; transcripts additionally inspect the
// attachment caption, because the exchange files them under a generic
// investor-meet subject.
var Rules = []Rule{
	{
		Category: types.CategoryTranscripts,
		Match: func(rec types.AnnouncementRecord) bool {
			return desc(rec) == "analysts/institutional investor meet/con. call updates" &&
				strings.Contains(strings.ToLower(rec.AttachmentText), "transcript")
		},
	},
	{
		Category: types.CategoryInvestorPresentations,
		Match: func(rec types.AnnouncementRecord) bool {
			return desc(rec) == "investor presentation"
		},
	},
	{
		Category: types.CategoryPressReleases,
		Match: func(rec types.AnnouncementRecord) bool {
			d := desc(rec)
			return d == "press release" || d == "press release (revised)"
		},
	},
	{
		Category: types.CategoryCreditRating,
		Match: func(rec types.AnnouncementRecord) bool {
			return desc(rec) == "credit rating"
		},
	},
	{
		Category: types.CategoryRelatedPartyTxns,
		Match: func(rec types.AnnouncementRecord) bool {
			d := desc(rec)
			return d == "related party transaction" || d == "related party transactions"
		},
	},
}

// Classify returns the category of rec, or false when no predicate matches.
// Records without an attachment are never classified; dropping them is not
// an error. Pure function: repeated calls on the same record agree.
func Classify(rec types.AnnouncementRecord) (types.Category, bool) {
	if strings.TrimSpace(rec.AttachmentURL) == "" {
		return "", false
	}
	for _, r := range Rules {
		if r.Match(rec) {
			return r.Category, true
		}
	}
	return "", false
}

// Reference converts a classified record into a document reference for the
// normalizer. The kind hint comes from the attachment URL extension and the
// feed's declared content type; the sniffing pass settles the rest.
func Reference(rec types.AnnouncementRecord, cat types.Category) types.DocumentReference {
	return types.DocumentReference{
		Source:      types.TierPrimary,
		URL:         rec.AttachmentURL,
		Kind:        kindHint(rec),
		Category:    cat,
		Symbol:      rec.Symbol,
		Description: rec.Description,
		Date:        rec.Date,
		DateKnown:   !rec.Date.IsZero(),
	}
}

func kindHint(rec types.AnnouncementRecord) types.DocKind {
	u := strings.ToLower(rec.AttachmentURL)
	ct := strings.ToLower(rec.ContentType)
	switch {
	case strings.HasSuffix(u, ".pdf") || strings.Contains(ct, "application/pdf"):
		return types.KindPDF
	case strings.HasSuffix(u, ".html") || strings.HasSuffix(u, ".htm") || strings.Contains(ct, "text/html"):
		return types.KindHTML
	default:
		return types.KindUnknown
	}
}

func desc(rec types.AnnouncementRecord) string {
	return strings.ToLower(strings.TrimSpace(rec.Description))
}

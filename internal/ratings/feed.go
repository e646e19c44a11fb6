// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratings

import (
	"context"

	"github.com/pdiddy/filings-engine/internal/category"
	"github.com/pdiddy/filings-engine/pkg/types"
)

// FeedSource derives credit rating documents from the exchange announcements
// feed. The lister is usually a closure over a feed the run fetched already,
// so a fallback consult costs no extra network round-trip.
type FeedSource struct {
	list func(ctx context.Context) ([]types.AnnouncementRecord, error)
}

// NewFeedSource wraps a feed lister.
func NewFeedSource(list func(ctx context.Context) ([]types.AnnouncementRecord, error)) *FeedSource {
	return &FeedSource{list: list}
}

// Name identifies the source in resolver errors.
func (s *FeedSource) Name() string { return "exchange feed" }

// Enumerate classifies the feed and keeps the credit rating records.
func (s *FeedSource) Enumerate(ctx context.Context) ([]types.DocumentReference, error) {
	records, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	var refs []types.DocumentReference
	for _, rec := range records {
		cat, ok := category.Classify(rec)
		if !ok || cat != types.CategoryCreditRating {
			continue
		}
		ref := category.Reference(rec, cat)
		ref.Source = types.TierFallback
		refs = append(refs, ref)
	}
	return refs, nil
}

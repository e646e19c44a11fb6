// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratings resolves credit rating documents, preferring the aggregator
// site and falling back to the exchange feed when the listing yields nothing.
// Implements: prd003-ratings (R1-R3);
//
//	docs/ARCHITECTURE § Source Resolution.
package ratings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/filings-engine/pkg/types"
)

// Source enumerates candidate rating documents from one origin.
type Source interface {
	Name() string
	Enumerate(ctx context.Context) ([]types.DocumentReference, error)
}

// Resolution is the outcome of a resolve: which tier supplied the documents
// and the documents themselves.
type Resolution struct {
	Tier types.SourceTier
	Refs []types.DocumentReference
}

// Resolver tries the primary source first and consults the fallback only
// when the primary produced nothing. The fallback is never contacted while
// the primary has answers; keeping the tiers strictly ordered makes a run
// reproducible.
type Resolver struct {
	Primary  Source
	Fallback Source
}

// Resolve enumerates rating documents for the inclusive date window.
//
// The primary result is taken as-is when it has at least one document. The
// primary's enumeration covers full history, so a non-empty answer is the
// definitive rating trail. The fallback is consulted only when the primary
// errors or comes back empty; its results are filtered to the window,
// boundaries included, with unknown-date documents kept since dropping them
// would silently lose the only copy we can find. A tier that yields zero
// documents counts as failed, so a run where neither tier delivers ends in
// a SourceUnavailableError wrapping both causes.
func (r *Resolver) Resolve(ctx context.Context, from, to time.Time) (Resolution, error) {
	primaryRefs, primaryErr := r.Primary.Enumerate(ctx)
	if primaryErr == nil && len(primaryRefs) > 0 {
		return Resolution{Tier: types.TierPrimary, Refs: primaryRefs}, nil
	}
	if primaryErr == nil {
		primaryErr = errors.New("no documents listed")
	}
	primaryErr = fmt.Errorf("%s: %w", r.Primary.Name(), primaryErr)

	fallbackRefs, fallbackErr := r.Fallback.Enumerate(ctx)
	if fallbackErr == nil {
		if kept := filterWindow(fallbackRefs, from, to); len(kept) > 0 {
			return Resolution{Tier: types.TierFallback, Refs: kept}, nil
		}
		fallbackErr = errors.New("no documents in range")
	}
	return Resolution{}, &types.SourceUnavailableError{
		Category:    types.CategoryCreditRating,
		PrimaryErr:  primaryErr,
		FallbackErr: fmt.Errorf("%s: %w", r.Fallback.Name(), fallbackErr),
	}
}

// filterWindow keeps refs dated inside [from, to], boundaries included, plus
// any ref whose date is unknown.
func filterWindow(refs []types.DocumentReference, from, to time.Time) []types.DocumentReference {
	kept := make([]types.DocumentReference, 0, len(refs))
	for _, ref := range refs {
		if !ref.DateKnown {
			kept = append(kept, ref)
			continue
		}
		if ref.Date.Before(from) || ref.Date.After(to) {
			continue
		}
		kept = append(kept, ref)
	}
	return kept
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sync"
	"time"
)

// Category is one of the fixed document categories a filing can belong to.
// Per prd001-categories R1.1: the set is closed; classification priority is
// the order of category.Rules.
type Category string

const (
	CategoryTranscripts           Category = "transcripts"
	CategoryInvestorPresentations Category = "investor_presentations"
	CategoryPressReleases         Category = "press_releases"
	CategoryCreditRating          Category = "credit_rating"
	CategoryRelatedPartyTxns      Category = "related_party_txns"
	CategoryAnnualReports         Category = "annual_reports"
	CategoryIssueDocuments        Category = "issue_documents"

	// CategoryForumThread tags artifacts produced by the forum thread
	// assembler, which bypasses announcement classification.
	CategoryForumThread Category = "forum_thread"
)

// AllCategories lists the categories a download run can request, in
// classification priority order.
var AllCategories = []Category{
	CategoryTranscripts,
	CategoryInvestorPresentations,
	CategoryPressReleases,
	CategoryCreditRating,
	CategoryRelatedPartyTxns,
	CategoryAnnualReports,
	CategoryIssueDocuments,
}

// SourceTier identifies which origin produced a document reference when a
// category has more than one source.
type SourceTier string

const (
	TierPrimary  SourceTier = "primary"
	TierFallback SourceTier = "fallback"
)

// DocKind is the inferred shape of a fetchable document.
type DocKind string

const (
	// KindPDF is a directly served PDF file.
	KindPDF DocKind = "pdf"
	// KindHTML is a page that must be rendered to produce a PDF artifact.
	KindHTML DocKind = "html"
	// KindViewer is a page that embeds a PDF by reference (a JS document
	// viewer) rather than serving the bytes directly.
	KindViewer DocKind = "viewer-wrapped"
	// KindUnknown defers classification to a byte sniff at fetch time.
	KindUnknown DocKind = "unknown"
)

// AnnouncementRecord is one filing event from the exchange feed. Immutable
// once fetched; it lives for the duration of a single run.
type AnnouncementRecord struct {
	// Symbol is the listed company's ticker (e.g. "HDFCBANK").
	Symbol string `json:"symbol" yaml:"symbol"`

	// Date is the publication timestamp from the feed.
	Date time.Time `json:"date" yaml:"date"`

	// Description is the feed's free-text subject line, used by category
	// predicates.
	Description string `json:"description" yaml:"description"`

	// AttachmentText is the feed's attachment caption, used by category
	// predicates (e.g. transcripts match on it).
	AttachmentText string `json:"attachment_text,omitempty" yaml:"attachment_text,omitempty"`

	// AttachmentURL points at the filed document. Records without one are
	// never classified.
	AttachmentURL string `json:"attachment_url" yaml:"attachment_url"`

	// ContentType is the feed's declared type for the attachment. Often
	// absent and sometimes wrong; treated as a hint only.
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`
}

// DocumentReference is a resolved pointer to a single fetchable artifact.
// Created by the source resolver or the category filter, consumed exactly
// once by the content normalizer.
type DocumentReference struct {
	Source   SourceTier `json:"source" yaml:"source"`
	URL      string     `json:"url" yaml:"url"`
	Kind     DocKind    `json:"kind" yaml:"kind"`
	Category Category   `json:"category" yaml:"category"`
	Symbol   string     `json:"symbol" yaml:"symbol"`

	// Description feeds the naming engine; free text from the origin.
	Description string `json:"description" yaml:"description"`

	// Date is the document's publication date. DateKnown is false for
	// origins that list full history without dates (e.g. annual report
	// listings, scraped rating captions without a year).
	Date      time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	DateKnown bool      `json:"date_known" yaml:"date_known"`
}

// Artifact is a normalized, validated file written to the flat run
// directory. Every artifact is non-empty and of a content type matching its
// extension; anything else is deleted before being reported.
type Artifact struct {
	Path        string `json:"path" yaml:"path"`
	Size        int64  `json:"size" yaml:"size"`
	ContentType string `json:"content_type" yaml:"content_type"`
}

// CategoryOutcome counts per-category processing results for one run.
type CategoryOutcome struct {
	Attempted int `json:"attempted" yaml:"attempted"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
}

// AcquisitionResult is the per-run summary built incrementally by the
// orchestrator. Append methods are safe for concurrent use so categories can
// be processed in parallel; the result is never mutated after the run
// returns it.
type AcquisitionResult struct {
	mu         sync.Mutex
	categories map[Category]*CategoryOutcome
	failures   []Failure
}

// NewAcquisitionResult returns an empty result ready for concurrent appends.
func NewAcquisitionResult() *AcquisitionResult {
	return &AcquisitionResult{categories: make(map[Category]*CategoryOutcome)}
}

func (r *AcquisitionResult) outcome(cat Category) *CategoryOutcome {
	o, ok := r.categories[cat]
	if !ok {
		o = &CategoryOutcome{}
		r.categories[cat] = o
	}
	return o
}

// RecordAttempt notes that a reference in cat is about to be normalized.
func (r *AcquisitionResult) RecordAttempt(cat Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome(cat).Attempted++
}

// RecordSuccess notes a successfully written artifact in cat.
func (r *AcquisitionResult) RecordSuccess(cat Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome(cat).Succeeded++
}

// RecordFailure notes a failed reference in cat together with its reason.
func (r *AcquisitionResult) RecordFailure(cat Category, f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome(cat).Failed++
	r.failures = append(r.failures, f)
}

// RecordCategoryFailure notes a category-level failure (e.g. both sources
// unavailable) that is not tied to a single reference.
func (r *AcquisitionResult) RecordCategoryFailure(cat Category, f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome(cat) // ensure the category appears in the summary
	r.failures = append(r.failures, f)
}

// Outcome returns the counts recorded for cat.
func (r *AcquisitionResult) Outcome(cat Category) CategoryOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.categories[cat]; ok {
		return *o
	}
	return CategoryOutcome{}
}

// Outcomes returns a copy of all per-category counts.
func (r *AcquisitionResult) Outcomes() map[Category]CategoryOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Category]CategoryOutcome, len(r.categories))
	for cat, o := range r.categories {
		out[cat] = *o
	}
	return out
}

// Failures returns a copy of every recorded failure, in append order.
func (r *AcquisitionResult) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Failure, len(r.failures))
	copy(out, r.failures)
	return out
}

// TotalSucceeded sums successes across categories.
func (r *AcquisitionResult) TotalSucceeded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, o := range r.categories {
		total += o.Succeeded
	}
	return total
}

// TotalFailed sums failures across categories.
func (r *AcquisitionResult) TotalFailed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, o := range r.categories {
		total += o.Failed
	}
	return total
}

// HasFailures reports whether anything in the run failed.
func (r *AcquisitionResult) HasFailures() bool {
	return r.TotalFailed() > 0 || len(r.Failures()) > 0
}

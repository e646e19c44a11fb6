// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// FailureKind labels a recorded failure for reporting. The set mirrors the
// acquisition failure taxonomy: transient fetch problems, content that
// cannot be normalized, artifacts that failed the post-write check, broken
// thread pagination, and categories with no usable source.
type FailureKind string

const (
	FailFetch              FailureKind = "fetch_error"
	FailUnsupportedContent FailureKind = "unsupported_content"
	FailEmptyArtifact      FailureKind = "empty_artifact"
	FailThreadFetch        FailureKind = "thread_fetch_error"
	FailSourceUnavailable  FailureKind = "source_unavailable"
)

// Failure attributes one processing failure to its originating reference.
type Failure struct {
	Ref     DocumentReference `json:"ref" yaml:"ref"`
	Kind    FailureKind       `json:"kind" yaml:"kind"`
	Message string            `json:"message" yaml:"message"`
}

// ValidationError reports bad pre-flight input (unknown symbol, inverted
// date range). It aborts a run before any per-category fetch happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// FetchError is a network or HTTP-level failure. Retried once by the
// normalizer's HTTP path; recorded as a failure afterwards.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UnsupportedContentError marks a reference whose content cannot be turned
// into an artifact. Never retried.
type UnsupportedContentError struct {
	URL    string
	Reason string
}

func (e *UnsupportedContentError) Error() string {
	return fmt.Sprintf("unsupported content at %s: %s", e.URL, e.Reason)
}

// EmptyArtifactError marks an artifact that failed the post-write integrity
// check (zero bytes or wrong leading bytes for its extension). The offending
// file is deleted before this error is returned.
type EmptyArtifactError struct {
	Path string
}

func (e *EmptyArtifactError) Error() string {
	return fmt.Sprintf("artifact %s is empty or malformed after write", e.Path)
}

// ThreadFetchError means forum pagination broke mid-stream. The whole thread
// assembly is abandoned; no partial artifact is written.
type ThreadFetchError struct {
	URL string
	Err error
}

func (e *ThreadFetchError) Error() string {
	return fmt.Sprintf("fetching thread %s: %v", e.URL, e.Err)
}

func (e *ThreadFetchError) Unwrap() error { return e.Err }

// SourceUnavailableError means every source for a category failed. Category
// level only; never fatal to the run.
type SourceUnavailableError struct {
	Category    Category
	PrimaryErr  error
	FallbackErr error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("no source available for %s (primary: %v, fallback: %v)",
		e.Category, e.PrimaryErr, e.FallbackErr)
}

// KindOfError maps an error from the processing pipeline onto a FailureKind
// for reporting. Unknown errors count as fetch errors, the broadest bucket.
func KindOfError(err error) FailureKind {
	var (
		unsupported *UnsupportedContentError
		empty       *EmptyArtifactError
		thread      *ThreadFetchError
		source      *SourceUnavailableError
	)
	switch {
	case errors.As(err, &unsupported):
		return FailUnsupportedContent
	case errors.As(err, &empty):
		return FailEmptyArtifact
	case errors.As(err, &thread):
		return FailThreadFetch
	case errors.As(err, &source):
		return FailSourceUnavailable
	default:
		return FailFetch
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts document references of any kind into verified
// PDF artifacts on disk. Implements: prd004-normalization (R1-R5);
//
//	docs/ARCHITECTURE § Normalization.
package normalize

import (
	"bytes"
	"strings"

	"github.com/pdiddy/filings-engine/pkg/types"
)

var pdfMagic = []byte("%PDF-")

// InferKind decides what a fetched document actually is, from the declared
// content type and the first bytes of the body. The bytes win over the
// declaration: origin servers routinely label PDFs as octet-streams and
// error pages as PDFs.
func InferKind(declared string, prefix []byte) types.DocKind {
	if bytes.HasPrefix(prefix, pdfMagic) {
		return types.KindPDF
	}
	if looksLikeHTML(prefix) {
		return types.KindHTML
	}

	ct := strings.ToLower(declared)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return types.KindPDF
	case strings.Contains(ct, "text/html"):
		return types.KindHTML
	}
	return types.KindUnknown
}

func looksLikeHTML(prefix []byte) bool {
	trimmed := bytes.ToLower(bytes.TrimLeft(prefix, " \t\r\n\xef\xbb\xbf"))
	return bytes.HasPrefix(trimmed, []byte("<!doctype")) ||
		bytes.HasPrefix(trimmed, []byte("<html"))
}

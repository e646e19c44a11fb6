// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns web pages and HTML fragments into PDF bytes using a
// headless browser. Implements: prd004-normalization (R3);
//
//	docs/ARCHITECTURE § Rendering.
package render

import "context"

// Renderer produces PDF bytes from a URL or an HTML document. Close releases
// the underlying browser; a Renderer is not usable after Close.
type Renderer interface {
	// PrintPDF loads the page at url and prints it to PDF.
	PrintPDF(ctx context.Context, url string) ([]byte, error)

	// PrintHTML prints a standalone HTML document to PDF.
	PrintHTML(ctx context.Context, html string) ([]byte, error)

	Close() error
}

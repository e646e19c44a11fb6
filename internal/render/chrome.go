// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/pdiddy/filings-engine/pkg/types"
)

// Chrome drives a headless Chrome instance. One browser with one tab is
// shared across calls, so prints are serialized: a second Navigate on the
// same page session would clobber the document being printed. Each print
// gets its own timeout derived from the configured budget.
type Chrome struct {
	cfg        types.RenderConfig
	browserCtx context.Context
	cancel     []context.CancelFunc

	mu sync.Mutex
}

// NewChrome launches the browser and verifies it started. The parent context
// bounds the browser's lifetime.
func NewChrome(parent context.Context, cfg types.RenderConfig) (*Chrome, error) {
	cfg = cfg.WithDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	c := &Chrome{
		cfg:        cfg,
		browserCtx: browserCtx,
		cancel:     []context.CancelFunc{browserCancel, allocCancel},
	}

	// Run with no actions forces the browser to start now, so a missing or
	// broken Chrome binary surfaces here instead of on the first document.
	if err := chromedp.Run(browserCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("starting headless browser: %w", err)
	}
	return c, nil
}

// PrintPDF navigates to url, waits for the body, and prints the page. Safe
// for concurrent use; calls take the tab one at a time.
func (c *Chrome) PrintPDF(ctx context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	printCtx, cancel := context.WithTimeout(c.browserCtx, c.cfg.Timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(printCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(c.cfg.PaperWidth).
				WithPaperHeight(c.cfg.PaperHeight).
				WithMarginTop(c.cfg.Margin).
				WithMarginBottom(c.cfg.Margin).
				WithMarginLeft(c.cfg.Margin).
				WithMarginRight(c.cfg.Margin).
				Do(ctx)
			return err
		}),
	)
	// Respect the caller's cancellation even though the print runs on the
	// browser context.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("printing %s: %w", url, err)
	}
	return pdf, nil
}

// PrintHTML writes the document to a temp file and prints it via file://.
// Chrome resolves relative resources against the temp location, which is
// what we want for self-contained documents.
func (c *Chrome) PrintHTML(ctx context.Context, html string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "render-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, "document.html")
	if err := os.WriteFile(tmpPath, []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("writing temp HTML: %w", err)
	}
	return c.PrintPDF(ctx, "file://"+tmpPath)
}

// Close shuts the browser down. Safe to call more than once.
func (c *Chrome) Close() error {
	for _, cancel := range c.cancel {
		cancel()
	}
	c.cancel = nil
	return nil
}

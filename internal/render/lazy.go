// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"sync"
)

// Lazy defers browser startup until the first document that needs rendering.
// Runs that touch only native PDFs never pay the launch cost or require a
// Chrome binary. A startup failure is sticky: every later call returns it.
//
// Lazy is the handle collaborators share across category goroutines, so it
// admits one print at a time: the wrapped renderer drives a single browser
// tab and interleaved prints would cross documents.
type Lazy struct {
	start func(ctx context.Context) (Renderer, error)

	once sync.Once
	r    Renderer
	err  error

	printMu sync.Mutex
}

// NewLazy wraps a renderer constructor. start is called at most once.
func NewLazy(start func(ctx context.Context) (Renderer, error)) *Lazy {
	return &Lazy{start: start}
}

func (l *Lazy) get(ctx context.Context) (Renderer, error) {
	l.once.Do(func() {
		l.r, l.err = l.start(ctx)
	})
	return l.r, l.err
}

// PrintPDF starts the browser if needed, then prints url.
func (l *Lazy) PrintPDF(ctx context.Context, url string) ([]byte, error) {
	r, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	l.printMu.Lock()
	defer l.printMu.Unlock()
	return r.PrintPDF(ctx, url)
}

// PrintHTML starts the browser if needed, then prints the document.
func (l *Lazy) PrintHTML(ctx context.Context, html string) ([]byte, error) {
	r, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	l.printMu.Lock()
	defer l.printMu.Unlock()
	return r.PrintHTML(ctx, html)
}

// Close shuts down the browser if it was ever started.
func (l *Lazy) Close() error {
	if l.r != nil {
		return l.r.Close()
	}
	return nil
}

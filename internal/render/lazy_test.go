// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRenderer struct {
	prints int
	closed bool
}

func (f *fakeRenderer) PrintPDF(_ context.Context, _ string) ([]byte, error) {
	f.prints++
	return []byte("%PDF-fake"), nil
}

func (f *fakeRenderer) PrintHTML(_ context.Context, _ string) ([]byte, error) {
	f.prints++
	return []byte("%PDF-fake"), nil
}

func (f *fakeRenderer) Close() error {
	f.closed = true
	return nil
}

func TestLazyStartsOnce(t *testing.T) {
	var starts int
	fake := &fakeRenderer{}
	l := NewLazy(func(_ context.Context) (Renderer, error) {
		starts++
		return fake, nil
	})

	for i := 0; i < 3; i++ {
		if _, err := l.PrintPDF(context.Background(), "https://ex.test/doc"); err != nil {
			t.Fatalf("PrintPDF: %v", err)
		}
	}
	if _, err := l.PrintHTML(context.Background(), "<html></html>"); err != nil {
		t.Fatalf("PrintHTML: %v", err)
	}

	if starts != 1 {
		t.Errorf("start called %d times, want 1", starts)
	}
	if fake.prints != 4 {
		t.Errorf("prints = %d, want 4", fake.prints)
	}
}

func TestLazyStickyStartError(t *testing.T) {
	var starts int
	boom := errors.New("no chrome binary")
	l := NewLazy(func(_ context.Context) (Renderer, error) {
		starts++
		return nil, boom
	})

	for i := 0; i < 2; i++ {
		if _, err := l.PrintPDF(context.Background(), "https://ex.test/doc"); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want %v", i, err, boom)
		}
	}
	if starts != 1 {
		t.Errorf("start called %d times, want 1 (failure must be sticky)", starts)
	}
}

func TestLazyCloseWithoutStart(t *testing.T) {
	l := NewLazy(func(_ context.Context) (Renderer, error) {
		t.Fatal("start must not be called by Close")
		return nil, nil
	})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

// overlapRenderer records how many prints are in flight at once.
type overlapRenderer struct {
	inFlight int32
	maxSeen  int32
}

func (o *overlapRenderer) enter() {
	n := atomic.AddInt32(&o.inFlight, 1)
	for {
		max := atomic.LoadInt32(&o.maxSeen)
		if n <= max || atomic.CompareAndSwapInt32(&o.maxSeen, max, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	atomic.AddInt32(&o.inFlight, -1)
}

func (o *overlapRenderer) PrintPDF(_ context.Context, _ string) ([]byte, error) {
	o.enter()
	return []byte("%PDF-fake"), nil
}

func (o *overlapRenderer) PrintHTML(_ context.Context, _ string) ([]byte, error) {
	o.enter()
	return []byte("%PDF-fake"), nil
}

func (o *overlapRenderer) Close() error { return nil }

func TestLazySerializesPrints(t *testing.T) {
	overlap := &overlapRenderer{}
	l := NewLazy(func(_ context.Context) (Renderer, error) { return overlap, nil })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				l.PrintPDF(context.Background(), "https://ex.test/doc")
			} else {
				l.PrintHTML(context.Background(), "<html></html>")
			}
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&overlap.maxSeen); got != 1 {
		t.Errorf("max concurrent prints = %d, want 1 (single browser tab)", got)
	}
}

func TestLazyCloseAfterStart(t *testing.T) {
	fake := &fakeRenderer{}
	l := NewLazy(func(_ context.Context) (Renderer, error) { return fake, nil })
	if _, err := l.PrintPDF(context.Background(), "https://ex.test/doc"); err != nil {
		t.Fatalf("PrintPDF: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !fake.closed {
		t.Error("underlying renderer was not closed")
	}
}

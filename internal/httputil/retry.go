// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// RetryBackoff is the fixed delay before the single retry of a transient
// failure. Tests override this to avoid real sleeps.
var RetryBackoff = 2 * time.Second

// DoWithRetry executes an HTTP request and retries exactly once, after a
// fixed backoff, when the failure looks transient: a network error, HTTP
// 429, or any 5xx. Content-shape problems are not its concern; any other
// response is returned as-is on the first attempt.
//
// On a retryable response the body is drained and closed before sleeping.
// If the context is cancelled during the backoff wait the function returns
// ctx.Err(). After the one retry the last outcome is returned so the caller
// can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// One retry only.
		if attempt >= 1 {
			return resp, err
		}

		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(RetryBackoff):
		}
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

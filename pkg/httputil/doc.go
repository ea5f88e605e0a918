// Package httputil provides HTTP client utilities for the report transport.
//
// # Overview
//
//   - [Retry]: automatic retry with exponential backoff
//   - [CheckStatus]: maps response status codes to coded errors
//   - [NewClient]: an http.Client with the default timeout
//
// # Retry
//
// [Retry] only repeats operations whose error is wrapped in
// [RetryableError]. [CheckStatus] wraps 5xx and 429 responses that way, and
// callers wrap network failures themselves:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode)
//	})
//
// Defaults: 3 attempts, 1 second initial delay doubling after each failure.
package httputil

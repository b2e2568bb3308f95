// Package httputil provides HTTP helpers for registry clients.
//
// [Retry] wraps a request with exponential backoff. Only errors wrapped in
// [RetryableError] are retried; everything else (a 404, a malformed
// response) is returned on the first attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// [RetryWithBackoff] uses 3 attempts starting at one second.
package httputil

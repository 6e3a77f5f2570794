// Package httputil provides retry logic for transient HTTP failures.
//
// Wrap an error in [RetryableError] to signal that the operation is
// worth repeating:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    if resp.StatusCode >= 500 {
//	        return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
//	    }
//	    return nil
//	})
//
// The wait between attempts doubles each time, except when the error
// sets [RetryableError.After]; a rate-limited client uses that to wait
// exactly as long as the server asked.
package httputil

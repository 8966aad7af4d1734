// File: internal/browser/wait.go
package browser

import (
	"context"
	"time"
)

// WaitForSelector waits up to timeout for the selector to appear. A timeout
// is not an error: it returns false so the caller can branch on absence. The
// error channel is reserved for failed round trips to the browser service.
func WaitForSelector(ctx context.Context, d Dispatcher, session *Session, selector string, timeout time.Duration) (bool, error) {
	result, err := d.Send(ctx, session, WaitFor(selector, int(timeout.Milliseconds())))
	if err != nil {
		return false, err
	}
	return result.Found, nil
}

// WaitForAnySelector tries each selector in listed order, each bounded by
// timeout, and returns the first that appears. The order encodes a priority
// of known UI variants, so it must not be reshuffled; total wait time is the
// sum across the list, not the max. Returns ("", false, nil) when all time
// out.
func WaitForAnySelector(ctx context.Context, d Dispatcher, session *Session, selectors []string, timeout time.Duration) (string, bool, error) {
	for _, selector := range selectors {
		found, err := WaitForSelector(ctx, d, session, selector, timeout)
		if err != nil {
			return "", false, err
		}
		if found {
			return selector, true, nil
		}
	}
	return "", false, nil
}

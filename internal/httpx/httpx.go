// Package httpx wraps outbound HTTP requests with bounded retries. It
// retries transport failures and retryable statuses (429 and 5xx),
// honoring Retry-After when the server sends one.
package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/kroma-network/zkvm-common/internal/logger"
)

const (
	// maxJitter is added to each backoff step to spread concurrent retriers.
	maxJitter = 200 * time.Millisecond
	// maxRetryAfter caps how long a Retry-After header can make us wait.
	maxRetryAfter = 30 * time.Second
)

// Do issues the request produced by build, retrying up to maxAttempts
// times with linear backoff. build runs once per attempt so request
// bodies are recreated, never re-read. A response with a non-retryable
// status is returned as-is; the caller owns closing its body. Context
// cancellation aborts both in-flight requests and backoff waits.
func Do(client *http.Client, build func() (*http.Request, error), maxAttempts int, baseDelay time.Duration) (*http.Response, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			if attempt == maxAttempts || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logger.Debug("Request failed, retrying", "attempt", attempt, "url", req.URL.String(), "error", err)
		} else {
			if !retryable(resp.StatusCode) || attempt == maxAttempts {
				return resp, nil
			}
			wait, ok := retryAfter(resp)
			resp.Body.Close()
			if ok {
				logger.Debug("Server asked to retry later", "attempt", attempt, "status", resp.StatusCode, "wait", wait)
				if err := sleep(req.Context(), wait); err != nil {
					return nil, err
				}
				continue
			}
			logger.Debug("Retryable status, backing off", "attempt", attempt, "status", resp.StatusCode, "url", req.URL.String())
		}

		delay := baseDelay*time.Duration(attempt) + time.Duration(rand.Int63n(int64(maxJitter)))
		if err := sleep(req.Context(), delay); err != nil {
			return nil, err
		}
	}
	// Every attempt returns inside the loop.
	return nil, errors.New("httpx: retries exhausted")
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// retryAfter parses the Retry-After header, which carries either a
// delay in seconds or an HTTP date.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, maxRetryAfter), true
	}
	if at, err := http.ParseTime(ra); err == nil {
		if d := time.Until(at); d > 0 {
			return min(d, maxRetryAfter), true
		}
	}
	return 0, false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

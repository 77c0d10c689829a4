// Package reliability holds retry classification shared by the upstream
// providers.
package reliability

import (
	"context"
	"errors"
	"net"
	"time"
)

// IsRetryableHTTPStatus reports whether an upstream status is worth another
// attempt: throttling, timeouts and transient server failures.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 408, 425, 429, 500, 502, 503, 504, 529:
		return true
	default:
		return false
	}
}

// IsRetryableSynthesisCode classifies error frames from the streaming TTS socket.
func IsRetryableSynthesisCode(code string) bool {
	switch code {
	case "rate_limited", "too_many_concurrent_requests", "system_busy", "resource_exhausted", "queue_overflow", "error":
		return true
	default:
		return false
	}
}

// IsTransientNetError reports network timeouts that carry no HTTP status.
func IsTransientNetError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Backoff doubles base per attempt and caps the result.
func Backoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}

// Wait sleeps for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

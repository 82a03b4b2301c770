package provider

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/lapedge/lapedge/pkg/metrics"
)

// RetryPolicy retries transient upstream failures with linearly
// increasing backoff. Attempt n waits n * Backoff before running.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy matches the production upstream policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: time.Second}
}

// Do runs fn until it succeeds, exhausts the attempts, or fails with a
// non-retriable error. The provider label feeds the retry counter.
func (p RetryPolicy) Do(ctx context.Context, provider string, fn func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			metrics.RecordUpstreamRetry(provider)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * p.Backoff):
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !Retriable(err) {
			return err
		}
	}
	return err
}

// Retriable reports whether an upstream failure is worth another
// attempt: timeouts, connection resets and DNS failures are; an HTTP
// status answer is not.
func Retriable(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET)
}

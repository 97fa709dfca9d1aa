package storage

import (
	"math/rand"
	"time"

	"github.com/sebmaj/netcat-go/internal/netcaterr"
)

// MaxWriteAttempts is the total number of attempts (first try plus
// retries) a throttled write gets before giving up.
const MaxWriteAttempts = 15

// minBackoff/maxBackoff are vars (not consts) so tests can shrink the
// jitter window instead of waiting out the real device timings.
var (
	minBackoff = 100 * time.Millisecond
	maxBackoff = 10 * time.Second
)

// WithRetry calls write until it succeeds, returns a non-retryable error,
// or MaxWriteAttempts is exhausted. isRetryable classifies a backend's
// transient throttling/provisioned-throughput errors; on exhaustion the
// last error is wrapped as ErrThrottlingRetryable — grounded on the
// original's ProvisionedThroughputExceededException/ThrottlingException
// retry loop (uniform(0.1, 10.0) s jittered backoff).
func WithRetry(subject, operation string, isRetryable func(error) bool, write func() error) error {
	var lastErr error
	for attempt := 1; attempt <= MaxWriteAttempts; attempt++ {
		lastErr = write()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt == MaxWriteAttempts {
			break
		}
		time.Sleep(minBackoff + time.Duration(rand.Float64()*float64(maxBackoff-minBackoff)))
	}
	return netcaterr.ThrottlingRetryable(subject, operation, lastErr.Error())
}

package connection

import "time"

// Retry defaults.
const (
	// DefaultRetryTimes is the default number of retries after the
	// first failed attempt.
	DefaultRetryTimes = 3

	// DefaultRetryInterval is the default pause between attempts.
	DefaultRetryInterval = 1 * time.Second
)

// Policy decides whether another connection attempt is permitted.
// The interval is constant across all attempts; there is no backoff.
type Policy struct {
	// Times is the retry budget: the number of additional attempts
	// permitted after the first failure.
	Times int

	// Interval is the pause between attempts.
	Interval time.Duration
}

// ShouldRetry reports whether the attempt with the given zero-based
// index may run. True for indices in [0, Times], so Times = N allows
// N+1 total attempts.
func (p Policy) ShouldRetry(attempt int) bool {
	return attempt >= 0 && attempt <= p.Times
}

package connection

import (
	"testing"
	"time"
)

func TestPolicyShouldRetry(t *testing.T) {
	t.Run("InclusiveBoundary", func(t *testing.T) {
		p := Policy{Times: 3, Interval: time.Second}

		// True for the full budget [0, Times]: 4 total attempts.
		for attempt := 0; attempt <= 3; attempt++ {
			if !p.ShouldRetry(attempt) {
				t.Errorf("ShouldRetry(%d) = false, want true", attempt)
			}
		}
		if p.ShouldRetry(4) {
			t.Error("ShouldRetry(4) = true, want false")
		}
		if p.ShouldRetry(100) {
			t.Error("ShouldRetry(100) = true, want false")
		}
	})

	t.Run("ZeroBudget", func(t *testing.T) {
		p := Policy{Times: 0, Interval: time.Second}

		if !p.ShouldRetry(0) {
			t.Error("the first attempt is always permitted")
		}
		if p.ShouldRetry(1) {
			t.Error("no retries with a zero budget")
		}
	})

	t.Run("NegativeAttempt", func(t *testing.T) {
		p := Policy{Times: 3, Interval: time.Second}
		if p.ShouldRetry(-1) {
			t.Error("negative attempt index is not permitted")
		}
	})
}

package config

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// NewBackOff returns the retry schedule for API calls: RetryDelay, then
// RetryDelay*BackoffMultiplier, and so on, without jitter.
func (s RemoteAPISettings) NewBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.RetryDelay
	b.Multiplier = s.BackoffMultiplier
	b.RandomizationFactor = 0
	b.MaxInterval = s.maxRetryInterval()
	b.Reset()
	return b
}

// RetryOptions bundles the backoff schedule with the attempt cap
// (one initial attempt plus MaxRetries).
func (s RemoteAPISettings) RetryOptions() []backoff.RetryOption {
	tries := s.MaxRetries + 1
	if tries < 1 {
		tries = 1
	}
	return []backoff.RetryOption{
		backoff.WithBackOff(s.NewBackOff()),
		backoff.WithMaxTries(uint(tries)),
	}
}

// NewLimiter returns a limiter allowing RequestsPerMinute requests per minute with no burst.
func (s RemoteAPISettings) NewLimiter() *rate.Limiter {
	if s.RequestsPerMinute <= 0 {
		return rate.NewLimiter(0, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.RequestsPerMinute)), 1)
}

// maxRetryInterval is the delay before the final retry.
func (s RemoteAPISettings) maxRetryInterval() time.Duration {
	interval := s.RetryDelay
	for i := 1; i < s.MaxRetries; i++ {
		next := float64(interval) * s.BackoffMultiplier
		if next >= math.MaxInt64 || math.IsNaN(next) {
			return backoff.DefaultMaxInterval
		}
		interval = time.Duration(next)
	}
	if interval <= 0 {
		return backoff.DefaultMaxInterval
	}
	return interval
}

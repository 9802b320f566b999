// Package ratelimit throttles the credential endpoints (login and password
// reset) with per-client token buckets keyed by IP.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a token bucket for a single client. Tokens refill continuously
// at a fixed rate and each allowed request spends one.
type Limiter struct {
	mu sync.Mutex

	// tokens currently in the bucket, fractional between refills
	tokens float64

	// lastRefill is when tokens were last accrued
	lastRefill time.Time

	// rate is tokens added per second
	rate float64

	// capacity bounds the bucket, which bounds the burst
	capacity float64
}

// Rate configures a bucket: the sustained request rate and the burst ceiling.
type Rate struct {
	RequestsPerSecond float64
	Burst             int
}

// NewLimiter creates a full bucket refilling at rate tokens per second and
// holding at most burst tokens.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		tokens:     float64(burst),
		lastRefill: time.Now(),
		rate:       rate,
		capacity:   float64(burst),
	}
}

// Allow spends a token if one is available and reports whether the request
// may proceed.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill(time.Now())

	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}

// refill accrues tokens for the time elapsed since the last refill, capped
// at capacity. Callers hold the lock.
func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.lastRefill).Seconds()
	l.lastRefill = now

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
}

// ResetTokens refills the bucket to capacity immediately.
func (l *Limiter) ResetTokens() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = l.capacity
	l.lastRefill = time.Now()
}

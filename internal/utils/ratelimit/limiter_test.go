package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter(t *testing.T) {
	limiter := NewLimiter(10, 5)

	require.NotNil(t, limiter)
	assert.Equal(t, float64(10), limiter.rate)
	assert.Equal(t, float64(5), limiter.capacity)
	assert.Equal(t, float64(5), limiter.tokens)
	assert.NotZero(t, limiter.lastRefill)
}

func TestLimiterAllow(t *testing.T) {
	t.Run("burst capacity is honored", func(t *testing.T) {
		limiter := NewLimiter(10, 5)

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow(), "request %d should pass within burst", i+1)
		}
		assert.False(t, limiter.Allow(), "request past the burst should be denied")
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		limiter := NewLimiter(10, 1)

		assert.True(t, limiter.Allow())
		assert.False(t, limiter.Allow())

		time.Sleep(150 * time.Millisecond)

		assert.True(t, limiter.Allow(), "a token should have refilled")
	})

	t.Run("tokens never exceed capacity", func(t *testing.T) {
		limiter := NewLimiter(10, 5)

		for i := 0; i < 5; i++ {
			limiter.Allow()
		}

		time.Sleep(time.Second)

		allowed := 0
		for i := 0; i < 10; i++ {
			if limiter.Allow() {
				allowed++
			}
		}
		assert.Equal(t, 5, allowed)
	})

	t.Run("zero rate never refills", func(t *testing.T) {
		limiter := NewLimiter(0, 2)

		assert.True(t, limiter.Allow())
		assert.True(t, limiter.Allow())

		time.Sleep(200 * time.Millisecond)

		assert.False(t, limiter.Allow())
	})

	t.Run("zero capacity denies everything", func(t *testing.T) {
		limiter := NewLimiter(10, 0)

		assert.False(t, limiter.Allow())
		time.Sleep(200 * time.Millisecond)
		assert.False(t, limiter.Allow())
	})

	t.Run("concurrent callers share one bucket", func(t *testing.T) {
		limiter := NewLimiter(0, 50)

		var wg sync.WaitGroup
		var allowed int32
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					if limiter.Allow() {
						atomic.AddInt32(&allowed, 1)
					}
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(50), atomic.LoadInt32(&allowed))
	})
}

func TestLimiterResetTokens(t *testing.T) {
	t.Run("reset restores the full burst", func(t *testing.T) {
		limiter := NewLimiter(10, 5)

		for i := 0; i < 5; i++ {
			limiter.Allow()
		}
		assert.False(t, limiter.Allow())

		limiter.ResetTokens()

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow(), "request %d should pass after a reset", i+1)
		}
	})

	t.Run("reset advances the refill clock", func(t *testing.T) {
		limiter := NewLimiter(10, 5)
		before := limiter.lastRefill

		time.Sleep(50 * time.Millisecond)
		limiter.ResetTokens()

		assert.True(t, limiter.lastRefill.After(before))
	})
}

package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(5, time.Minute, time.Minute)
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := rl.Allow("courier-1")
		assert.True(t, allowed, "call %d should be allowed", i+1)
	}
}

func TestRejectsOverLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("courier-1")
		assert.True(t, allowed)
	}

	allowed, retryAfter := rl.Allow("courier-1")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, time.Minute)
}

func TestRetryAfterDecreases(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Minute, time.Minute)
	defer rl.Stop()

	rl.Allow("courier-1")

	_, first := rl.Allow("courier-1")
	time.Sleep(20 * time.Millisecond)
	_, second := rl.Allow("courier-1")

	assert.Less(t, second, first)
}

func TestWindowResetsAfterElapse(t *testing.T) {
	rl := NewFixedWindowLimiter(2, 50*time.Millisecond, time.Minute)
	defer rl.Stop()

	rl.Allow("store-1")
	rl.Allow("store-1")
	allowed, _ := rl.Allow("store-1")
	assert.False(t, allowed)

	time.Sleep(70 * time.Millisecond)

	allowed, _ = rl.Allow("store-1")
	assert.True(t, allowed)
}

func TestPrincipalsAreIndependent(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Minute, time.Minute)
	defer rl.Stop()

	allowed, _ := rl.Allow("courier-1")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("courier-1")
	assert.False(t, allowed)

	allowed, _ = rl.Allow("courier-2")
	assert.True(t, allowed)
}

func TestSweepEvictsStaleWindows(t *testing.T) {
	rl := NewFixedWindowLimiter(5, 20*time.Millisecond, 30*time.Millisecond)
	defer rl.Stop()

	rl.Allow("courier-1")
	assert.Equal(t, 1, rl.Len())

	// Idle past 2x the window size plus a sweep tick.
	time.Sleep(120 * time.Millisecond)

	assert.Equal(t, 0, rl.Len())
}

func TestConcurrentAllowCountsEveryCall(t *testing.T) {
	rl := NewFixedWindowLimiter(100, time.Minute, time.Minute)
	defer rl.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := rl.Allow("courier-1"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

package ratelimit

import (
	"sync"
	"time"
)

// window is one principal's fixed request window.
type window struct {
	count       int
	windowStart time.Time
	mutex       sync.Mutex
}

// FixedWindowLimiter counts requests per principal inside a fixed window.
// The window does not slide, so a burst straddling a boundary can briefly
// exceed the limit; acceptable for abuse mitigation, not quota accounting.
type FixedWindowLimiter struct {
	windows     map[string]*window
	mutex       sync.RWMutex
	maxRequests int
	windowSize  time.Duration
	done        chan struct{}
	once        sync.Once
}

func NewFixedWindowLimiter(maxRequests int, windowSize, sweepInterval time.Duration) *FixedWindowLimiter {
	rl := &FixedWindowLimiter{
		windows:     make(map[string]*window),
		maxRequests: maxRequests,
		windowSize:  windowSize,
		done:        make(chan struct{}),
	}

	go rl.sweepLoop(sweepInterval)

	return rl
}

// Allow reports whether the principal may proceed. On rejection the second
// return value is the time remaining until the window resets.
func (rl *FixedWindowLimiter) Allow(principalID string) (bool, time.Duration) {
	rl.mutex.RLock()
	w, exists := rl.windows[principalID]
	rl.mutex.RUnlock()

	if !exists {
		rl.mutex.Lock()
		// Double-check pattern
		if w, exists = rl.windows[principalID]; !exists {
			w = &window{windowStart: time.Now()}
			rl.windows[principalID] = w
		}
		rl.mutex.Unlock()
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	now := time.Now()
	if now.Sub(w.windowStart) > rl.windowSize {
		w.count = 0
		w.windowStart = now
	}

	w.count++
	if w.count <= rl.maxRequests {
		return true, 0
	}

	return false, rl.windowSize - now.Sub(w.windowStart)
}

// Len reports how many principals currently hold a window, for monitoring
// and eviction checks.
func (rl *FixedWindowLimiter) Len() int {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()
	return len(rl.windows)
}

func (rl *FixedWindowLimiter) Stop() {
	rl.once.Do(func() {
		close(rl.done)
	})
}

func (rl *FixedWindowLimiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

// sweep evicts principals whose window last advanced more than twice the
// window size ago, so the map does not grow with every principal ever seen.
func (rl *FixedWindowLimiter) sweep() {
	now := time.Now()

	rl.mutex.RLock()
	var stale []string
	for principalID, w := range rl.windows {
		w.mutex.Lock()
		idle := now.Sub(w.windowStart)
		w.mutex.Unlock()
		if idle > 2*rl.windowSize {
			stale = append(stale, principalID)
		}
	}
	rl.mutex.RUnlock()

	if len(stale) == 0 {
		return
	}

	rl.mutex.Lock()
	for _, principalID := range stale {
		delete(rl.windows, principalID)
	}
	rl.mutex.Unlock()
}

package http

import (
	"sync"
	"time"
)

const (
	rateLimitPerMinute = 60
	rateLimitWindow    = time.Minute
)

// visitor tracks request counts for one client IP inside the current window.
type visitor struct {
	windowStart time.Time
	count       int
}

// rateLimiter caps mutating requests per client IP using fixed windows.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	done     chan struct{}
	stopOnce sync.Once
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		done:     make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// allow reports whether a request from the given IP fits in its window.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v := rl.visitors[clientIP]
	if v == nil || now.Sub(v.windowStart) > rateLimitWindow {
		rl.visitors[clientIP] = &visitor{windowStart: now, count: 1}
		return true
	}

	v.count++
	return v.count <= rateLimitPerMinute
}

// janitor drops visitors whose window expired long ago.
func (rl *rateLimiter) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if v.windowStart.Before(cutoff) {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

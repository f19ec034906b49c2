package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiters keeps one token bucket per client address. A bucket idle for
// every*burst has fully refilled, so it is dropped on the next sweep.
type clientLimiters struct {
	every time.Duration
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	entries   map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(every time.Duration, burst int) *clientLimiters {
	return &clientLimiters{
		every:   every,
		burst:   burst,
		idle:    every * time.Duration(burst),
		now:     time.Now,
		entries: make(map[string]*clientLimiter),
	}
}

func (c *clientLimiters) allow(key string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= c.idle {
		for k, e := range c.entries {
			if now.Sub(e.lastSeen) >= c.idle {
				delete(c.entries, k)
			}
		}
		c.lastSweep = now
	}

	e, ok := c.entries[key]
	if !ok {
		e = &clientLimiter{limiter: rate.NewLimiter(rate.Every(c.every), c.burst)}
		c.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (c *clientLimiters) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

package model

import (
	"sync"
	"time"
)

// Clock accumulates the thinking time of one side.
type Clock struct {
	mu          sync.Mutex
	used        time.Duration
	lastStarted time.Time // When the clock was last started
	isRunning   bool
}

func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = time.Now()
		c.isRunning = true
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.used += time.Since(c.lastStarted)
		c.isRunning = false
	}
}

func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.used = 0
	c.isRunning = false
}

func (c *Clock) GetTimeUsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.used + time.Since(c.lastStarted)
	}
	return c.used
}

// tenths converts a duration to the tenths of a second sent to clients.
func tenths(d time.Duration) int {
	return int(d.Milliseconds() / 100)
}

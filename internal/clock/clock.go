// Package clock drives the session timer. A Clock calls its callback once
// per interval on a private goroutine until stopped.
package clock

import (
	"sync"
	"time"
)

// DefaultInterval is the tick rate of the session timer.
const DefaultInterval = time.Second

// Clock is a restartable ticker. The callback runs with the clock's lock
// held, so once Stop returns no further callback can run. The callback
// must not call Start or Stop.
type Clock struct {
	mu       sync.Mutex
	interval time.Duration
	onTick   func()
	stop     chan struct{}
}

// New returns a stopped clock.
func New(interval time.Duration, onTick func()) *Clock {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Clock{interval: interval, onTick: onTick}
}

// Start begins ticking. It returns false if the clock is already running.
func (c *Clock) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return false
	}
	stop := make(chan struct{})
	c.stop = stop
	go c.run(stop)
	return true
}

// Stop halts ticking. Stopping a stopped clock is a no-op.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return
	}
	close(c.stop)
	c.stop = nil
}

// Running reports whether the clock is ticking.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

func (c *Clock) run(stop chan struct{}) {
	t := time.NewTicker(c.interval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			c.mu.Lock()
			// A tick that raced with Stop (or Stop+Start) belongs to a
			// finished run and is dropped.
			if c.stop != stop {
				c.mu.Unlock()
				return
			}
			c.onTick()
			c.mu.Unlock()
		}
	}
}

package swarm

import (
	"sync"
	"time"
)

// Ticker delivers frame signals to the engine loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. The engine asks for a fresh ticker on every Start.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// RealClock returns a Clock backed by time.Ticker.
func RealClock() Clock { return realClock{} }

type realClock struct{}

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// ManualClock hands out tickers that only fire when Advance is called.
// It lets hosts and tests step the frame loop deterministically.
type ManualClock struct {
	mu      sync.Mutex
	current *manualTicker
}

// NewManualClock creates a clock with no active ticker.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// NewTicker implements Clock.
func (c *ManualClock) NewTicker(time.Duration) Ticker {
	t := &manualTicker{
		ch:      make(chan time.Time),
		stopped: make(chan struct{}),
	}
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
	return t
}

// Advance delivers one tick to the most recent ticker and blocks until the
// loop has received it. It returns false if there is no live ticker.
func (c *ManualClock) Advance() bool {
	c.mu.Lock()
	t := c.current
	c.mu.Unlock()

	if t == nil {
		return false
	}
	select {
	case t.ch <- time.Now():
		return true
	case <-t.stopped:
		return false
	}
}

type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

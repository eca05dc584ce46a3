package game

import (
	"sync"
	"time"
)

// TurnClock owns the single pending turn timer. Arming replaces any prior
// timer in one step, so at most one callback is ever outstanding.
//
// A fire that loses the race against Stop can still run after a new timer
// was armed. Every arm therefore gets a fresh epoch, delivered to the
// callback; the engine compares it against the epoch of the current arm and
// drops stale fires.
type TurnClock struct {
	mu    sync.Mutex
	timer *time.Timer
	epoch uint64
}

func NewTurnClock() *TurnClock {
	return &TurnClock{}
}

// Arm schedules fire(epoch) to run after d, cancelling any previously armed
// timer. It returns the epoch of the new arm.
func (c *TurnClock) Arm(d time.Duration, fire func(epoch uint64)) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.epoch++
	epoch := c.epoch
	c.timer = time.AfterFunc(d, func() { fire(epoch) })
	return epoch
}

// Cancel stops the pending timer, if any. Cancelling an already-fired or
// already-cancelled clock is a no-op. The epoch still advances so that an
// in-flight fire from before the cancel can be recognized as stale.
func (c *TurnClock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.epoch++
}

// Epoch reports the epoch of the most recent arm or cancel.
func (c *TurnClock) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

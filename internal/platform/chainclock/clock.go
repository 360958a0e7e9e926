package chainclock

import (
	"errors"
	"sync/atomic"
)

// ErrClockRegression is returned when the host attempts to move the epoch
// counter backwards.
var ErrClockRegression = errors.New("epoch counter cannot decrease")

// Counter is the host-supplied logical clock. The core never advances it;
// the host environment sets it and every module reads it through its own
// EpochSource port.
type Counter struct {
	value atomic.Uint64
}

func New(start uint64) *Counter {
	c := &Counter{}
	c.value.Store(start)
	return c
}

// Epoch returns the current logical time.
func (c *Counter) Epoch() uint64 {
	return c.value.Load()
}

// Set moves the counter to epoch. Monotonic non-decreasing; equal values are
// allowed so repeated host syncs are harmless.
func (c *Counter) Set(epoch uint64) error {
	for {
		current := c.value.Load()
		if epoch < current {
			return ErrClockRegression
		}
		if c.value.CompareAndSwap(current, epoch) {
			return nil
		}
	}
}

// Advance bumps the counter by delta and returns the new value.
func (c *Counter) Advance(delta uint64) uint64 {
	return c.value.Add(delta)
}

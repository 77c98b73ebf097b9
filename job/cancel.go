package job

import "sync"

// Cancellation is a one-shot trip signal with an on-trip callback list. It
// stands in for the event loop's externally-provided cancellation token: any
// goroutine may call Cancel, and every callback registered before the trip
// runs exactly once, in registration order, on the goroutine that called
// Cancel.
type Cancellation struct {
	mu        sync.Mutex
	tripped   bool
	callbacks []func()
}

// NewCancellation returns a token that has not been tripped.
func NewCancellation() *Cancellation {
	return &Cancellation{}
}

// Cancel trips the token. Subsequent calls are no-ops.
func (c *Cancellation) Cancel() {
	c.mu.Lock()
	if c.tripped {
		c.mu.Unlock()
		return
	}
	c.tripped = true
	cbs := c.callbacks
	c.callbacks = nil
	c.mu.Unlock()
	for _, cb := range cbs {
		if cb != nil {
			cb()
		}
	}
}

// Tripped reports whether Cancel has been called.
func (c *Cancellation) Tripped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tripped
}

// onTrip registers cb to run when the token trips. If the token is already
// tripped, cb runs synchronously before onTrip returns. The returned
// function deregisters cb; it is a no-op once the token has tripped.
func (c *Cancellation) onTrip(cb func()) (deregister func()) {
	c.mu.Lock()
	if c.tripped {
		c.mu.Unlock()
		cb()
		return func() {}
	}
	idx := len(c.callbacks)
	c.callbacks = append(c.callbacks, cb)
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.callbacks) {
			c.callbacks[idx] = nil
		}
	}
}

package usp

import (
	"context"
	"time"
)

// runWorker is the Worker Pump (spec.md §4.5): a single background
// execution context started at the end of Connect. It flips the
// connection live, then loops calling Transport.DoWork until Shutdown
// clears the connected flag.
func (c *Connection) runWorker(ctx context.Context) {
	c.mu.Lock()
	c.connected = true
	connectedCh := c.connectedCh
	c.mu.Unlock()

	close(connectedCh)

	defer close(c.workerDone)

	for {
		c.mu.Lock()
		if !c.connected {
			c.mu.Unlock()
			Log().Info("worker exiting: connection no longer live")
			return
		}
		transport := c.transport
		c.mu.Unlock()

		if transport != nil {
			if err := transport.DoWork(ctx); err != nil {
				c.mu.Lock()
				cb := c.callbacks
				c.Invoke(func() {
					if cb != nil && cb.OnError != nil {
						uerr := &UserError{Recoverable: true, Kind: ErrorRuntime, Message: "Unhandled exception in the USP layer: " + err.Error()}
						Log().LogUserError(uerr)
						cb.OnError(uerr.Recoverable, uerr.Kind, uerr.Message)
					}
				})
				c.mu.Unlock()
			}
		}

		select {
		case <-c.haveWork:
		case <-time.After(workerPollInterval):
		case <-ctx.Done():
		}
	}
}

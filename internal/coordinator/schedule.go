package coordinator

import (
	"context"
	"errors"
)

// StartSchedule arms the recurring refresh. Any previously armed ticker is
// stopped first, so at most one ticker is ever live.
func (c *Coordinator) StartSchedule(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	stop := make(chan struct{})
	done := make(chan struct{})
	c.stopCh, c.doneCh = stop, done

	go c.tickLoop(ctx, c.newTicker(c.interval), stop, done)

	c.logger.WithField("interval", c.interval.String()).Info("Refresh schedule started")
}

// StopSchedule stops the live ticker; it is a no-op when none is armed
func (c *Coordinator) StopSchedule() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopLocked() {
		c.logger.Info("Refresh schedule stopped")
	}
}

// Scheduled reports whether a ticker is armed
func (c *Coordinator) Scheduled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopCh != nil
}

// stopLocked stops the current ticker loop and waits for it to exit.
// Caller must hold c.mu.
func (c *Coordinator) stopLocked() bool {
	if c.stopCh == nil {
		return false
	}
	close(c.stopCh)
	<-c.doneCh
	c.stopCh, c.doneCh = nil, nil
	return true
}

// tickLoop runs until stop is closed or ctx ends. When ctx ends the handle is
// cleared so Scheduled reports false; done is closed first so a concurrent
// stopLocked holding c.mu can finish.
func (c *Coordinator) tickLoop(ctx context.Context, t ticker, stop chan struct{}, done chan struct{}) {
	expired := c.runTicks(ctx, t, stop)
	t.Stop()
	close(done)

	if !expired {
		return
	}
	c.mu.Lock()
	if c.stopCh == stop {
		c.stopCh, c.doneCh = nil, nil
	}
	c.mu.Unlock()
	c.logger.Info("Refresh schedule ended with its context")
}

// runTicks reports true when it returned because ctx ended
func (c *Coordinator) runTicks(ctx context.Context, t ticker, stop <-chan struct{}) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case <-stop:
			return false
		case <-t.C():
			// each tick runs on its own goroutine so an overlapping tick is
			// dropped by the in-flight guard rather than queued behind it
			go func() {
				if err := c.TriggerRefresh(ctx); errors.Is(err, ErrRefreshInFlight) {
					c.logger.Debug("Scheduled refresh skipped")
				}
			}()
		}
	}
}

// HandleOnline refreshes immediately and re-arms the schedule
func (c *Coordinator) HandleOnline(ctx context.Context) {
	c.logger.Info("Network online, refreshing")
	c.StartSchedule(ctx)
	if err := c.TriggerRefresh(ctx); err != nil && !errors.Is(err, ErrRefreshInFlight) {
		c.logger.WithError(err).Warn("Refresh after reconnect failed")
	}
}

// HandleOffline shows the connection-lost notice; the schedule keeps running
func (c *Coordinator) HandleOffline() {
	c.logger.Warn("Network offline")
	c.banner.Show(OfflineMessage)
}

package viewmode

import (
	"context"
	"slices"

	"github.com/matzehuels/witview/pkg/observability"
	"github.com/matzehuels/witview/pkg/view"
)

// acquire waits for the switch slot. Waiters are served in arrival order. If
// ctx ends first the caller gives up its place in the queue.
func (c *Coordinator) acquire(ctx context.Context, target view.Mode) error {
	c.mu.Lock()
	if !c.busy {
		c.busy = true
		c.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	c.queue = append(c.queue, ch)
	c.mu.Unlock()

	observability.Switch().OnSwitchQueued(ctx, string(target))
	c.logger.Debug("view switch queued", "target", target)

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		i := slices.Index(c.queue, ch)
		if i >= 0 {
			c.queue = slices.Delete(c.queue, i, i+1)
			c.mu.Unlock()
			return ctx.Err()
		}
		c.mu.Unlock()
		// The slot was handed over while ctx ended; pass it on.
		c.release()
		return ctx.Err()
	}
}

// release hands the switch slot to the next waiter, or frees it.
func (c *Coordinator) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		c.busy = false
		return
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	close(next)
}

// Pending returns the number of switches waiting for the slot.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

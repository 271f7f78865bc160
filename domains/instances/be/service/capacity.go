package service

import (
	"fmt"
	"sync"
)

// CapacityTracker maintains the node's available-capacity counter. All
// mutation happens under a mutex held only for the read-modify-write, never
// across a remote call.
type CapacityTracker struct {
	mu        sync.Mutex
	total     int64
	unit      int64
	available int64
}

// NewCapacityTracker constructs a tracker with the configured total capacity
// and per-instance unit.
func NewCapacityTracker(total, unit int64) *CapacityTracker {
	if unit <= 0 {
		panic("capacity tracker requires a positive unit")
	}
	if total < 0 {
		panic("capacity tracker requires a non-negative total")
	}
	return &CapacityTracker{total: total, unit: unit, available: total}
}

// Initialize sets the available capacity from the number of already
// provisioned instances. Called once at startup; an instance count that
// exceeds the configured capacity indicates drift between the record store
// and the configuration.
func (c *CapacityTracker) Initialize(instanceCount int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	available := c.total - int64(instanceCount)*c.unit
	if available < 0 {
		return fmt.Errorf("%d existing instances exceed configured capacity %d (unit %d)",
			instanceCount, c.total, c.unit)
	}
	c.available = available
	return nil
}

// Reserve takes one capacity unit, failing with ErrCapacityExhausted when
// none is left.
func (c *CapacityTracker) Reserve() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.available-c.unit < 0 {
		return ErrCapacityExhausted
	}
	c.available -= c.unit
	return nil
}

// Release returns one capacity unit.
func (c *CapacityTracker) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available += c.unit
}

// Snapshot reads the current available capacity and the unit size.
func (c *CapacityTracker) Snapshot() (available, unit int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available, c.unit
}

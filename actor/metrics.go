package actor

import "sync/atomic"

// Metrics tracks per-actor counters.
type Metrics struct {
	Name     string
	Sent     atomic.Int64
	Received atomic.Int64
	Dropped  atomic.Int64
	Invalid  atomic.Int64
	Panics   atomic.Int64
	Timeouts atomic.Int64
	Restarts atomic.Int32
}

// NewMetrics creates metrics for the named actor.
func NewMetrics(name string) *Metrics {
	return &Metrics{Name: name}
}

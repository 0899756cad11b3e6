// Package control implements spec.md §5's control<->audio communication
// primitives: a lock-free scalar mailbox for plain parameter writes, an SPSC
// command queue for sample-deadline-ordered events, an SPSC readback ring for
// audio->control telemetry, and a grace-period retirement queue for
// structural swaps (e.g. reloading a sample bound to active voices).
package control

import (
	"math"
	"sync/atomic"
)

// ParamMailbox is a single float64 slot the control context writes and the
// audio context reads, with no locking, the same bitcast-through-atomic
// technique every engine in the pack uses for its master gain
// (atomic.StoreUint64(math.Float64bits(...)) / Float64frombits(Load...)).
type ParamMailbox struct {
	bits atomic.Uint64
}

// NewParamMailbox creates a mailbox initialized to v.
func NewParamMailbox(v float64) *ParamMailbox {
	m := &ParamMailbox{}
	m.Store(v)
	return m
}

// Store is called from the control context.
func (m *ParamMailbox) Store(v float64) {
	m.bits.Store(math.Float64bits(v))
}

// Load is called from the audio context, once per block.
func (m *ParamMailbox) Load() float64 {
	return math.Float64frombits(m.bits.Load())
}

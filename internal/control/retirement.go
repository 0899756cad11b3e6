package control

// retirementEntry holds state the audio thread no longer references once
// graceBlocks more blocks have rendered, after which it's safe for the
// control context to actually free/reuse it.
type retirementEntry struct {
	value       any
	graceBlocks int
}

// Retirement implements the three-step structural-swap pattern spec.md §5
// requires for edits that can't be made atomic in one step: (1) the control
// context allocates new state, (2) swaps a pointer/index atomically (the
// caller's responsibility, e.g. via a ParamMailbox-style atomic pointer),
// (3) retires the old state here instead of freeing it immediately, so an
// in-flight audio block still reading the old pointer never sees it change
// underneath it.
type Retirement struct {
	entries []retirementEntry
}

// NewRetirement creates an empty retirement queue.
func NewRetirement() *Retirement {
	return &Retirement{}
}

// Retire enqueues value for reclamation after graceBlocks more blocks have
// elapsed. graceBlocks should cover the deepest in-flight pipelining depth
// (typically 1-2 blocks).
func (r *Retirement) Retire(value any, graceBlocks int) {
	if graceBlocks < 1 {
		graceBlocks = 1
	}
	r.entries = append(r.entries, retirementEntry{value: value, graceBlocks: graceBlocks})
}

// Advance is called once per audio block from the control context (it must
// not run on the audio thread, since it allocates). It returns every value
// whose grace period has just elapsed, ready to actually discard/reuse, and
// drops them from the queue.
func (r *Retirement) Advance() []any {
	var ready []any
	kept := r.entries[:0]
	for _, e := range r.entries {
		e.graceBlocks--
		if e.graceBlocks <= 0 {
			ready = append(ready, e.value)
		} else {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return ready
}

// Pending reports how many entries are still serving their grace period.
func (r *Retirement) Pending() int { return len(r.entries) }

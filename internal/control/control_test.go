package control

import "testing"

func TestParamMailboxRoundTrips(t *testing.T) {
	m := NewParamMailbox(440)
	if v := m.Load(); v != 440 {
		t.Fatalf("expected 440, got %f", v)
	}
	m.Store(880.5)
	if v := m.Load(); v != 880.5 {
		t.Fatalf("expected 880.5, got %f", v)
	}
}

func TestCommandQueueAppliesInDeadlineOrder(t *testing.T) {
	q := NewCommandQueue()
	var order []int
	q.Push(Command{Deadline: 10, Apply: func() { order = append(order, 10) }})
	q.Push(Command{Deadline: 20, Apply: func() { order = append(order, 20) }})
	q.Push(Command{Deadline: 30, Apply: func() { order = append(order, 30) }})

	q.DrainUpTo(20, func(c Command) { c.Apply() })

	if len(order) != 2 || order[0] != 10 || order[1] != 20 {
		t.Fatalf("expected [10 20] applied, got %v", order)
	}

	q.DrainUpTo(100, func(c Command) { c.Apply() })
	if len(order) != 3 || order[2] != 30 {
		t.Fatalf("expected the remaining deadline-30 command applied, got %v", order)
	}
}

func TestCommandQueueDropsGenericWhenFullButKeepsNoteOffs(t *testing.T) {
	q := NewCommandQueue()
	for i := 0; i < commandRingSize; i++ {
		if !q.Push(Command{Deadline: int64(i), Apply: func() {}}) {
			t.Fatalf("expected push %d to succeed within capacity", i)
		}
	}
	if q.Push(Command{Deadline: 999, Apply: func() {}}) {
		t.Fatal("expected the overflow generic push to be dropped")
	}
	if q.Dropped.Load() != 1 {
		t.Fatalf("expected Dropped=1, got %d", q.Dropped.Load())
	}

	var noteOffFired bool
	q.Push(Command{Kind: CommandNoteOff, Deadline: 1, Apply: func() { noteOffFired = true }})
	q.DrainUpTo(1, func(c Command) { c.Apply() })
	if !noteOffFired {
		t.Fatal("expected the note-off to still fire despite the full generic ring")
	}
}

func TestReadbackOverwritesOldestWhenFull(t *testing.T) {
	r := NewReadback()
	for i := 0; i < readbackRingSize+2; i++ {
		r.Publish(Snapshot{Step: i})
	}
	got := r.Drain()
	if len(got) != readbackRingSize {
		t.Fatalf("expected %d retained snapshots, got %d", readbackRingSize, len(got))
	}
	if got[0].Step != 2 {
		t.Errorf("expected the oldest two snapshots to have been overwritten, first retained step=%d", got[0].Step)
	}
}

func TestRetirementReclaimsAfterGracePeriod(t *testing.T) {
	r := NewRetirement()
	r.Retire("old-buffer", 2)

	if ready := r.Advance(); len(ready) != 0 {
		t.Fatalf("expected nothing ready after 1 block, got %v", ready)
	}
	ready := r.Advance()
	if len(ready) != 1 || ready[0] != "old-buffer" {
		t.Fatalf("expected old-buffer ready after 2 blocks, got %v", ready)
	}
	if r.Pending() != 0 {
		t.Errorf("expected queue empty after reclamation, got %d pending", r.Pending())
	}
}

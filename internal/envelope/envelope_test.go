package envelope

import "testing"

func TestNoteOnThenOffReachesIdle(t *testing.T) {
	e := New(48000)
	e.SetParams(Params{Shape: ShapeADSR, Attack: 0.001, Decay: 0.001, Sustain: 0.8, Release: 0.001, ResetOnRetrigger: true})
	e.NoteOn()
	for i := 0; i < 2000 && e.State() != StateSustain; i++ {
		e.Advance()
	}
	if e.State() != StateSustain {
		t.Fatalf("expected sustain state, got %v", e.State())
	}
	e.NoteOff()
	for i := 0; i < 48000 && !e.Idle(); i++ {
		e.Advance()
	}
	if !e.Idle() {
		t.Fatal("envelope never reached idle after note-off")
	}
}

func TestReleaseFromAttackIsContinuous(t *testing.T) {
	e := New(48000)
	e.SetParams(Params{Shape: ShapeADSR, Attack: 0.5, Decay: 0.1, Sustain: 0.5, Release: 0.05, ResetOnRetrigger: true})
	e.NoteOn()
	for i := 0; i < 100; i++ {
		e.Advance()
	}
	levelBeforeRelease := e.Level()
	e.NoteOff()
	levelAfterReleaseStarts := e.Advance()
	diff := levelBeforeRelease - levelAfterReleaseStarts
	if diff < 0 {
		diff = -diff
	}
	if diff > 0.01 {
		t.Errorf("release should start continuously from current level: before=%f after=%f", levelBeforeRelease, levelAfterReleaseStarts)
	}
}

func TestAHDHoldNoteWaitsForNoteOff(t *testing.T) {
	e := New(48000)
	e.SetParams(Params{Shape: ShapeAHD, Attack: 0.001, Hold: HoldNote, Decay: 0.01, Release: 0.01, ResetOnRetrigger: true})
	e.NoteOn()
	for i := 0; i < 500; i++ {
		e.Advance()
	}
	if e.State() == StateIdle {
		t.Fatal("AHD with Hold=NOTE should not have gone idle while note held")
	}
	e.NoteOff()
	for i := 0; i < 48000 && !e.Idle(); i++ {
		e.Advance()
	}
	if !e.Idle() {
		t.Fatal("AHD envelope never went idle after note-off")
	}
}

func TestResetOnRetriggerFalseContinuesLevel(t *testing.T) {
	e := New(48000)
	e.SetParams(Params{Shape: ShapeADSR, Attack: 0.2, Decay: 0.1, Sustain: 0.5, Release: 0.1, ResetOnRetrigger: false})
	e.NoteOn()
	for i := 0; i < 2000; i++ {
		e.Advance()
	}
	levelBefore := e.Level()
	e.NoteOn() // retrigger without reset
	levelAfter := e.Level()
	if levelAfter < levelBefore-0.05 {
		t.Errorf("retrigger without reset should continue from %f, got %f", levelBefore, levelAfter)
	}
}

func TestResetOnRetriggerTrueRestartsFromZero(t *testing.T) {
	e := New(48000)
	e.SetParams(Params{Shape: ShapeADSR, Attack: 0.2, Decay: 0.1, Sustain: 0.5, Release: 0.1, ResetOnRetrigger: true})
	e.NoteOn()
	for i := 0; i < 2000; i++ {
		e.Advance()
	}
	if e.Level() < 0.05 {
		t.Fatalf("expected a non-trivial level before retriggering, got %f", e.Level())
	}
	e.NoteOn() // retrigger while not idle, with reset requested
	if e.Level() != 0 {
		t.Errorf("expected ResetOnRetrigger=true to restart the attack from 0, got %f", e.Level())
	}
}

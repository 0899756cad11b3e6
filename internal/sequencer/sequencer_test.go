package sequencer

import "testing"

type fakeEngine struct {
	noteOns  []int
	noteOffs []int
	locks    map[[2]int]float64
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{locks: map[[2]int]float64{}}
}

func (e *fakeEngine) NoteOn(track, note, velocity int) { e.noteOns = append(e.noteOns, track) }
func (e *fakeEngine) NoteOff(track int)                { e.noteOffs = append(e.noteOffs, track) }
func (e *fakeEngine) SetParamLock(track, paramID int, value float64) {
	e.locks[[2]int{track, paramID}] = value
}

func onePageOfFourSteps() Pattern {
	p := *NewPattern()
	page := NewPage()
	page.Length = 4
	for i := 0; i < 4; i++ {
		page.Steps[i] = Step{Active: true, Note: 60 + i, Velocity: 100, LengthSteps: 1}
	}
	p.Tracks[0] = TrackPattern{Pages: []Page{page}}
	return p
}

func TestAdvanceFiresNoteOnAtStepZero(t *testing.T) {
	p := onePageOfFourSteps()
	eng := newFakeEngine()
	seq := New(eng, &p, 48000)

	for i := 0; i < 48000; i++ {
		seq.Advance()
		if len(eng.noteOns) > 0 {
			break
		}
	}
	if len(eng.noteOns) == 0 {
		t.Fatal("expected at least one note-on within one second at 120bpm")
	}
	if eng.noteOns[0] != 0 {
		t.Errorf("expected note-on to address track 0, got %d", eng.noteOns[0])
	}
}

func TestInactiveStepNeverFires(t *testing.T) {
	p := *NewPattern()
	page := NewPage()
	page.Length = 1
	page.Steps[0] = Step{Active: false}
	p.Tracks[0] = TrackPattern{Pages: []Page{page}}
	eng := newFakeEngine()
	seq := New(eng, &p, 48000)

	for i := 0; i < 48000; i++ {
		seq.Advance()
	}
	if len(eng.noteOns) != 0 {
		t.Fatalf("expected no note-ons for an inactive step, got %d", len(eng.noteOns))
	}
}

func TestNotFillConditionBlocksWhenFillActive(t *testing.T) {
	p := *NewPattern()
	page := NewPage()
	page.Length = 1
	page.Steps[0] = Step{Active: true, Note: 60, Velocity: 100, LengthSteps: 1, Condition: TrigCondition{Kind: TrigNotFill}}
	p.Tracks[0] = TrackPattern{Pages: []Page{page}}
	eng := newFakeEngine()
	seq := New(eng, &p, 48000)
	seq.SetFillLatched(true)

	for i := 0; i < 48000; i++ {
		seq.Advance()
	}
	if len(eng.noteOns) != 0 {
		t.Fatalf("expected NotFill condition to suppress the step while fill is active, got %d note-ons", len(eng.noteOns))
	}
}

func TestRetrigSchedulesMultipleNoteOns(t *testing.T) {
	p := *NewPattern()
	page := NewPage()
	page.Length = 1
	page.Steps[0] = Step{
		Active: true, Note: 60, Velocity: 100, LengthSteps: 1,
		Retrig: Retrig{Subdivisions: 4},
	}
	p.Tracks[0] = TrackPattern{Pages: []Page{page}}
	eng := newFakeEngine()
	seq := New(eng, &p, 48000)

	for i := 0; i < 48000; i++ {
		seq.Advance()
	}
	if len(eng.noteOns) < 4 {
		t.Fatalf("expected at least 4 retriggered note-ons, got %d", len(eng.noteOns))
	}
}

func TestParamLockAppliedBeforeNoteOn(t *testing.T) {
	p := *NewPattern()
	page := NewPage()
	page.Length = 1
	page.Steps[0] = Step{
		Active: true, Note: 60, Velocity: 100, LengthSteps: 1,
		Locks: []ParamLock{{ParamID: 3, Value: 0.75}},
	}
	p.Tracks[0] = TrackPattern{Pages: []Page{page}}
	eng := newFakeEngine()
	seq := New(eng, &p, 48000)

	for i := 0; i < 48000; i++ {
		seq.Advance()
	}
	if v, ok := eng.locks[[2]int{0, 3}]; !ok || v != 0.75 {
		t.Errorf("expected param lock 3 on track 0 set to 0.75, got %v ok=%v", v, ok)
	}
}

func TestPerformModeDiscardsEdits(t *testing.T) {
	p := *NewPattern()
	seq := New(newFakeEngine(), &p, 48000)

	seq.EnterPerformMode()
	seq.pattern.Tracks[0].Pages[0].Steps[0].Active = true
	seq.ExitPerformMode()

	if seq.pattern.Tracks[0].Pages[0].Steps[0].Active {
		t.Error("expected ExitPerformMode to discard the edit made during the performance")
	}
}

func TestClockClampsTempo(t *testing.T) {
	c := NewClock(48000)
	c.SetTempo(5)
	if c.BPM() != MinBPM {
		t.Errorf("expected tempo clamped to %f, got %f", MinBPM, c.BPM())
	}
	c.SetTempo(1000)
	if c.BPM() != MaxBPM {
		t.Errorf("expected tempo clamped to %f, got %f", MaxBPM, c.BPM())
	}
}

func TestTrigRatioFiresOnlyOnMatchingPass(t *testing.T) {
	cond := TrigCondition{Kind: TrigRatio, A: 2, B: 2}
	rng := newRNG(1)
	if cond.evaluate(passState{passNumber: 1}, rng) {
		t.Error("expected pass 1 of 2 to not match A=2")
	}
	if !cond.evaluate(passState{passNumber: 2}, rng) {
		t.Error("expected pass 2 of 2 to match A=2")
	}
}

func TestTrigNeighborReferencesAdjacentLowerTrack(t *testing.T) {
	p := *NewPattern()
	for i := range p.Tracks {
		page := NewPage()
		page.Length = 1
		page.Steps[0] = Step{Active: true, Note: 60, Velocity: 100, LengthSteps: 1, Condition: TrigCondition{Kind: TrigNeighbor}}
		p.Tracks[i] = TrackPattern{Pages: []Page{page}}
	}
	eng := newFakeEngine()
	seq := New(eng, &p, 48000)

	// Track 1's neighbor is track 0, dispatched earlier in the same pulse.
	seq.neighborFired[0] = true
	if !seq.advanceTrack(1, &seq.playheads[1]) {
		t.Error("expected track 1 to fire when track 0 (its neighbor) fired this pulse")
	}

	seq.neighborFired[0] = false
	seq.playheads[1] = trackPlayhead{}
	if seq.advanceTrack(1, &seq.playheads[1]) {
		t.Error("expected track 1 to not fire when track 0 (its neighbor) did not fire")
	}

	// Track 0 wraps to track 15, which is dispatched later in the pulse, so
	// it reads track 15's outcome from the previous pulse.
	seq.neighborFired[15] = true
	seq.playheads[0] = trackPlayhead{}
	if !seq.advanceTrack(0, &seq.playheads[0]) {
		t.Error("expected track 0 to fire when track 15 (its wrapped neighbor) fired")
	}

	seq.neighborFired[15] = false
	seq.playheads[0] = trackPlayhead{}
	if seq.advanceTrack(0, &seq.playheads[0]) {
		t.Error("expected track 0 to not fire when track 15 did not fire")
	}
}

func TestSongAdvancesRowOnRepeatExhausted(t *testing.T) {
	patterns := map[int]*Pattern{0: NewPattern(), 1: NewPattern()}
	patterns[0].Tempo = 100
	patterns[1].Tempo = 140
	resolve := func(i int) *Pattern { return patterns[i] }

	song := &Song{Rows: []SongRow{
		{PatternIndex: 0, RepeatCount: 1},
		{PatternIndex: 1, RepeatCount: 1, Terminal: TerminalStop},
	}}
	seq := New(newFakeEngine(), patterns[0], 48000)
	seq.SetSong(song, resolve)

	seq.PatternCompleted(resolve)

	if seq.songRow != 1 {
		t.Fatalf("expected song to advance to row 1, got row %d", seq.songRow)
	}
	if seq.pattern.Tempo != 140 {
		t.Errorf("expected the new row's pattern tempo applied, got %f", seq.pattern.Tempo)
	}
}

package voice

import (
	"testing"

	"github.com/nortledge/strata/internal/envelope"
	"github.com/nortledge/strata/internal/sampledata"
)

func newTestPool(t *testing.T, n int, mode PolyMode) (*Pool, *sampledata.Store, sampledata.Index) {
	t.Helper()
	p := NewPool(n, 48000, 20000)
	p.Mode = mode
	for _, v := range p.Voices {
		v.AmpEnv.SetParams(envelope.Params{Shape: envelope.ShapeADSR, Attack: 0.001, Decay: 0.01, Sustain: 1.0, Release: 0.05})
	}
	store, idx := storeWithOneShot(t, 48000*5)
	return p, store, idx
}

func TestPoolAllocatesDistinctVoicesPerNote(t *testing.T) {
	p, store, idx := newTestPool(t, 4, PolyPoly)
	v1 := p.NoteOn(60, 100, store, idx, 0, PlayFwdLoop, InterpLinear)
	v2 := p.NoteOn(64, 100, store, idx, 4, PlayFwdLoop, InterpLinear)
	if v1 == v2 {
		t.Fatal("expected distinct voices for distinct notes")
	}
	if p.ActiveCount() != 2 {
		t.Errorf("expected 2 active voices, got %d", p.ActiveCount())
	}
}

func TestPoolStealsLowestLevelVoiceWhenExhausted(t *testing.T) {
	p, store, idx := newTestPool(t, 2, PolyPoly)
	v1 := p.NoteOn(60, 100, store, idx, 0, PlayFwdLoop, InterpLinear)
	v2 := p.NoteOn(62, 100, store, idx, 0, PlayFwdLoop, InterpLinear)
	// advance v1 into release so its level drops below v2's
	v1.NoteOff()
	for i := 0; i < 2000; i++ {
		p.Process(store)
	}
	v3 := p.NoteOn(64, 100, store, idx, 0, PlayFwdLoop, InterpLinear)
	if v3 != v1 {
		t.Error("expected the quieter (released) voice to be stolen")
	}
	_ = v2
}

func TestPoolMonoReusesSingleVoice(t *testing.T) {
	p, store, idx := newTestPool(t, 4, PolyMono)
	v1 := p.NoteOn(60, 100, store, idx, 0, PlayFwdLoop, InterpLinear)
	v2 := p.NoteOn(64, 100, store, idx, 4, PlayFwdLoop, InterpLinear)
	if v1 != v2 {
		t.Error("expected mono mode to reuse the single voice")
	}
	if p.ActiveCount() != 1 {
		t.Errorf("expected exactly 1 active voice in mono mode, got %d", p.ActiveCount())
	}
}

func TestPoolMonoNoteOffReturnsToHeldNote(t *testing.T) {
	p, store, idx := newTestPool(t, 4, PolyMono)
	p.NoteOn(60, 100, store, idx, 0, PlayFwdLoop, InterpLinear)
	p.NoteOn(64, 100, store, idx, 4, PlayFwdLoop, InterpLinear)
	next, nextVel, has := p.NoteOff(64)
	if !has || next != 60 || nextVel != 100 {
		t.Errorf("expected note-off on top note to return to held note (60, vel 100), got next=%d vel=%d has=%v", next, nextVel, has)
	}
}

func TestPoolReuseVoicesRetriggersSameNote(t *testing.T) {
	p, store, idx := newTestPool(t, 4, PolyPoly)
	p.ReuseVoices = true
	v1 := p.NoteOn(60, 100, store, idx, 0, PlayFwdLoop, InterpLinear)
	v2 := p.NoteOn(60, 120, store, idx, 0, PlayFwdLoop, InterpLinear)
	if v1 != v2 {
		t.Error("expected reuse_voices to retrigger the existing voice for the same note")
	}
	if p.ActiveCount() != 1 {
		t.Errorf("expected 1 active voice after reuse retrigger, got %d", p.ActiveCount())
	}
}

package voice

import (
	"testing"

	"github.com/nortledge/strata/internal/envelope"
	"github.com/nortledge/strata/internal/sampledata"
)

func storeWithOneShot(t *testing.T, n int) (*sampledata.Store, sampledata.Index) {
	t.Helper()
	store := sampledata.NewStore()
	frames := make([]float32, n)
	for i := range frames {
		frames[i] = 1.0
	}
	idx, _, err := store.Load("test", 48000, 1, frames, -1, -1)
	if err != nil {
		t.Fatal(err)
	}
	return store, idx
}

func TestVoiceNoteOnProducesSoundThenIdles(t *testing.T) {
	store, idx := storeWithOneShot(t, 4800)
	v := NewVoice(0, 48000, 20000, 1, 2)
	v.AmpEnv.SetParams(envelope.Params{Shape: envelope.ShapeADSR, Attack: 0.001, Decay: 0.01, Sustain: 1.0, Release: 0.01})
	v.NoteOn(1, 60, 100, store, idx, 0, PlayFwdOneShot, InterpLinear)

	var sawSound bool
	for i := 0; i < 10000; i++ {
		l, r := v.Process(store)
		if l != 0 || r != 0 {
			sawSound = true
		}
	}
	if !sawSound {
		t.Fatal("expected nonzero output at some point")
	}
	if v.Active {
		t.Error("expected voice to return to idle after the one-shot sample and release envelope finish")
	}
}

func TestVoiceNoteOffReleases(t *testing.T) {
	store, idx := storeWithOneShot(t, 48000*5)
	v := NewVoice(0, 48000, 20000, 1, 2)
	v.Osc.PlayMode = PlayFwdLoop
	v.AmpEnv.SetParams(envelope.Params{Shape: envelope.ShapeADSR, Attack: 0.001, Decay: 0.01, Sustain: 1.0, Release: 0.01})
	v.NoteOn(1, 60, 100, store, idx, 0, PlayFwdLoop, InterpLinear)
	for i := 0; i < 500; i++ {
		v.Process(store)
	}
	if !v.Active {
		t.Fatal("voice should still be sounding before note-off")
	}
	v.NoteOff()
	for i := 0; i < 48000; i++ {
		v.Process(store)
	}
	if v.Active {
		t.Error("expected voice idle well after note-off and release time")
	}
}

func TestVelocityGainMonotonic(t *testing.T) {
	if VelocityGain(1) >= VelocityGain(127) {
		t.Error("expected higher velocity to produce higher gain")
	}
	if VelocityGain(0) != 0 {
		t.Error("expected velocity 0 to produce zero gain")
	}
}

package voice

import (
	"testing"

	"github.com/nortledge/strata/internal/sampledata"
)

func rampSample(n int, loopStart, loopEnd int) *sampledata.Sample {
	frames := make([]float32, n)
	for i := range frames {
		frames[i] = float32(i)
	}
	return &sampledata.Sample{SampleRate: 48000, Channels: 1, Frames: frames, LoopStart: loopStart, LoopEnd: loopEnd}
}

func TestOscillatorOffSlotFinishesImmediately(t *testing.T) {
	var o Oscillator
	l, r, finished := o.Next(nil, 1.0)
	if l != 0 || r != 0 || !finished {
		t.Errorf("expected silent+finished for OFF slot, got l=%f r=%f finished=%v", l, r, finished)
	}
}

func TestOscillatorFwdOneShotFinishesAtEnd(t *testing.T) {
	s := rampSample(10, -1, -1)
	o := Oscillator{PlayMode: PlayFwdOneShot, Interp: InterpLinear}
	o.Reset(s)
	finished := false
	for i := 0; i < 20 && !finished; i++ {
		_, _, finished = o.Next(s, 1.0)
	}
	if !finished {
		t.Fatal("expected one-shot to finish within 20 samples of a 10-frame sample")
	}
}

func TestOscillatorRevOneShotFinishesAtStart(t *testing.T) {
	s := rampSample(10, -1, -1)
	o := Oscillator{PlayMode: PlayRevOneShot, Interp: InterpLinear}
	o.Reset(s)
	finished := false
	for i := 0; i < 20 && !finished; i++ {
		_, _, finished = o.Next(s, 1.0)
	}
	if !finished {
		t.Fatal("expected reverse one-shot to finish")
	}
}

func TestOscillatorFwdLoopNeverFinishes(t *testing.T) {
	s := rampSample(100, 10, 90)
	o := Oscillator{PlayMode: PlayFwdLoop, Interp: InterpLinear}
	o.Reset(s)
	for i := 0; i < 1000; i++ {
		_, _, finished := o.Next(s, 3.0)
		if finished {
			t.Fatalf("looped oscillator finished early at sample %d", i)
		}
	}
}

func TestOscillatorRegionOffsetAndEndTrimPlayback(t *testing.T) {
	s := rampSample(100, -1, -1)
	o := Oscillator{PlayMode: PlayFwdOneShot, Interp: InterpLinear, StartFrame: 20, EndFrame: 30}
	o.Reset(s)
	if o.Phase != 20 {
		t.Fatalf("expected reset to start at StartFrame=20, got %f", o.Phase)
	}
	finished := false
	for i := 0; i < 20 && !finished; i++ {
		_, _, finished = o.Next(s, 1.0)
	}
	if !finished {
		t.Fatal("expected playback to finish at EndFrame well before the sample's own end")
	}
}

func TestOscillatorPitchRatioOctaveUp(t *testing.T) {
	if r := PitchRatio(12); r < 1.99 || r > 2.01 {
		t.Errorf("PitchRatio(12) = %f, want ~2.0", r)
	}
	if r := PitchRatio(-12); r < 0.49 || r > 0.51 {
		t.Errorf("PitchRatio(-12) = %f, want ~0.5", r)
	}
}

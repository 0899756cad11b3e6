package effects

import (
	"math"
	"testing"
)

func TestDaisyDelayProducesDelayedOutput(t *testing.T) {
	d := NewDaisyDelay(44100)
	d.SetTimeMs(100)
	d.SetFeedback(0.5)
	d.SetWet(0.5)
	d.Process(1.0, 1.0)
	for i := 0; i < 4409; i++ {
		d.Process(0, 0)
	}
	l, r := d.Process(0, 0)
	if math.Abs(float64(l)) < 0.01 || math.Abs(float64(r)) < 0.01 {
		t.Errorf("expected delayed output, got l=%f r=%f", l, r)
	}
}

func TestSaturatorDelaySaturatesRepeats(t *testing.T) {
	s := NewSaturatorDelay(44100)
	s.SetDrive(8)
	s.SetFeedback(0.8)
	l, _ := s.Process(1.0, 1.0)
	if l == 0 {
		t.Error("expected non-zero first tap")
	}
}

func TestRumsklangProducesTail(t *testing.T) {
	r := NewRumsklang(44100)
	r.Process(1.0, 1.0)
	var maxOut float32
	for i := 0; i < 10000; i++ {
		l, _ := r.Process(0, 0)
		if l > maxOut {
			maxOut = l
		}
	}
	if maxOut < 0.001 {
		t.Error("expected reverb tail")
	}
}

func TestSupervoidProducesTail(t *testing.T) {
	s := NewSupervoid(44100)
	s.Process(1.0, 1.0)
	var maxOut float32
	for i := 0; i < 20000; i++ {
		l, _ := s.Process(0, 0)
		if l > maxOut {
			maxOut = l
		}
	}
	if maxOut < 0.001 {
		t.Error("expected a long decay tail")
	}
}

func TestDirtshaperClips(t *testing.T) {
	d := NewDirtshaper(44100)
	d.SetPreGain(10)
	d.SetPostGain(0.5)
	d.SetTone(1)
	l, r := d.Process(0.5, 0.5)
	if math.Abs(float64(l)) > 1.0 || math.Abs(float64(r)) > 1.0 {
		t.Error("distortion output should be bounded")
	}
	if math.Abs(float64(l)) < 0.01 {
		t.Error("expected non-zero distortion output")
	}
}

func TestFilterbankUnityGain(t *testing.T) {
	fb := NewFilterbank(44100)
	for i := 0; i < 1000; i++ {
		fb.Process(0.5, 0.5)
	}
	l, r := fb.Process(0.5, 0.5)
	if math.Abs(float64(l)-0.5) > 0.1 || math.Abs(float64(r)-0.5) > 0.1 {
		t.Errorf("expected ~0.5 with unity gains, got l=%f r=%f", l, r)
	}
}

func TestFilterbankBandCut(t *testing.T) {
	fb := NewFilterbank(44100)
	fb.SetGain(0, 0)
	for i := 0; i < 1000; i++ {
		fb.Process(1, 1)
	}
}

func TestCompressorReducesLoud(t *testing.T) {
	c := NewCompressor(44100)
	c.SetThresholdDB(-10)
	c.SetRatio(4)
	c.SetAttackMs(1)
	c.SetReleaseMs(50)
	var out float32
	for i := 0; i < 1000; i++ {
		out, _ = c.Process(1.0, 1.0)
	}
	if out >= 1.0 {
		t.Errorf("compressor should reduce loud signals, got %f", out)
	}
}

func TestChorusWidensSignal(t *testing.T) {
	c := NewChorus(44100)
	l, r := c.Process(0.5, 0.5)
	_ = l
	_ = r
}

func TestFlangerProducesComb(t *testing.T) {
	f := NewFlanger(44100)
	for i := 0; i < 100; i++ {
		f.Process(1, 1)
	}
}

func TestWarbleModulates(t *testing.T) {
	w := NewWarble(44100)
	for i := 0; i < 1000; i++ {
		w.Process(0.5, 0.5)
	}
}

func TestPhaserSweeps(t *testing.T) {
	p := NewPhaser(44100)
	for i := 0; i < 1000; i++ {
		p.Process(0.5, -0.5)
	}
}

func TestCombFilterResonates(t *testing.T) {
	c := NewCombFilter(44100)
	c.SetFreqHz(440)
	c.SetFeedback(0.9)
	c.Process(1, 1)
	var maxOut float32
	for i := 0; i < 2000; i++ {
		l, _ := c.Process(0, 0)
		if l > maxOut {
			maxOut = l
		}
	}
	if maxOut < 0.001 {
		t.Error("expected comb filter to ring")
	}
}

func TestDegraderQuantizes(t *testing.T) {
	d := NewDegrader(44100)
	d.SetBits(2)
	d.SetDownsample(8)
	for i := 0; i < 32; i++ {
		d.Process(float32(math.Sin(float64(i))), float32(math.Sin(float64(i))))
	}
}

func TestFreqWarperRingMods(t *testing.T) {
	f := NewFreqWarper(44100)
	f.SetCarrierHz(100)
	f.SetMix(1)
	l, _ := f.Process(1, 1)
	if l > 1.0001 {
		t.Error("ring-modulated output should not exceed input amplitude")
	}
}

func TestChronoPitchShiftsWithoutExploding(t *testing.T) {
	c := NewChronoPitch(44100)
	c.SetSemitones(12)
	c.SetMix(1)
	for i := 0; i < 48000; i++ {
		l, _ := c.Process(float32(math.Sin(float64(i)*0.05)), float32(math.Sin(float64(i)*0.05)))
		if math.IsNaN(float64(l)) || math.Abs(float64(l)) > 4 {
			t.Fatalf("chrono pitch output diverged at sample %d: %f", i, l)
		}
	}
}

func TestLowPassAttenuatesHighs(t *testing.T) {
	lp := NewLowPassFX(44100)
	// Apply the new cutoff on the first sample instead of ramping down from
	// the 4 kHz default over a 128-sample smoothing block.
	lp.SetBlockSize(1)
	lp.SetCutoffHz(200)
	var prev float32
	for i := 0; i < 100; i++ {
		prev, _ = lp.Process(1, 1)
	}
	if prev >= 1.0 {
		t.Error("expected lowpass to attenuate a high-frequency step")
	}
}

func TestMultimodeFXMorphsFilter(t *testing.T) {
	m := NewMultimodeFX(44100)
	m.SetMorph(0)
	for i := 0; i < 100; i++ {
		m.Process(1, -1)
	}
}

func TestBypassPassesThrough(t *testing.T) {
	b := NewBypass()
	l, r := b.Process(0.3, -0.4)
	if l != 0.3 || r != -0.4 {
		t.Errorf("bypass should not alter signal, got l=%f r=%f", l, r)
	}
}

func TestDisabledEffectPassesThrough(t *testing.T) {
	d := NewDirtshaper(44100)
	d.Enabled = false
	l, r := d.Process(0.3, -0.4)
	if l != 0.3 || r != -0.4 {
		t.Errorf("disabled effect should pass through unchanged, got l=%f r=%f", l, r)
	}
}

func TestChainAppliesEffectsInOrder(t *testing.T) {
	c := NewChain(
		NewDirtshaper(44100),
		NewDaisyDelay(44100),
	)
	l, r := c.Process(0.5, 0.5)
	if l == 0 || r == 0 {
		t.Error("chain should produce output")
	}
}

func TestNewDispatchesByTag(t *testing.T) {
	for _, tag := range []Tag{
		TagBypass, TagChronoPitch, TagCombFilter, TagCompressor, TagDaisyDelay,
		TagDegrader, TagDirtshaper, TagFilterbank, TagFlanger, TagLowPass,
		TagMultimode, TagChorus, TagPhaser, TagSaturatorDelay, TagRumsklang,
		TagSupervoid, TagWarble, TagFreqWarper,
	} {
		e := New(tag, 44100)
		if e == nil {
			t.Fatalf("New(%v) returned nil", tag)
		}
		e.Process(0, 0)
		e.Reset()
	}
}

package lfo

import (
	"math"
	"testing"
)

// driveCycles advances l by n steps of 1.0 step each, returning the samples.
func driveCycles(l *LFO, stepDurationSec float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = l.Sample(stepDurationSec, 1.0)
	}
	return out
}

func TestLFOTriangleBasicShape(t *testing.T) {
	l := &LFO{Speed: 32, Multiplier: 1, Waveform: WaveTri, Depth: 1}
	// period = 2048/(32*1) = 64 steps
	samples := driveCycles(l, 0.01, 64)

	if math.Abs(samples[0]-(-0.96875)) > 0.05 {
		t.Errorf("triangle at step 0: got %f", samples[0])
	}
	mid := samples[32]
	if math.Abs(mid-1.0) > 0.1 {
		t.Errorf("triangle near half period: got %f, want ~1.0", mid)
	}
}

func TestLFOSquareShape(t *testing.T) {
	l := &LFO{Speed: 32, Multiplier: 1, Waveform: WaveSqr, Depth: 2}
	v := l.Sample(0.01, 1.0)
	if math.Abs(v-2.0) > 0.01 {
		t.Errorf("square first half: got %f, want 2.0", v)
	}
	for i := 1; i < 32; i++ {
		l.Sample(0.01, 1.0)
	}
	v = l.Sample(0.01, 1.0)
	if math.Abs(v-(-2.0)) > 0.01 {
		t.Errorf("square second half: got %f, want -2.0", v)
	}
}

func TestLFOSawShape(t *testing.T) {
	l := &LFO{Speed: 32, Multiplier: 1, Waveform: WaveSaw, Depth: 1}
	v := l.Sample(0.01, 0)
	if math.Abs(v-1.0) > 0.001 {
		t.Errorf("saw at phase 0: got %f, want 1.0", v)
	}
}

func TestLFOZeroDepthReturnsZero(t *testing.T) {
	l := &LFO{Speed: 32, Multiplier: 1, Waveform: WaveTri, Depth: 0}
	if v := l.Sample(0.01, 1); v != 0 {
		t.Errorf("zero depth should return 0, got %f", v)
	}
}

func TestLFOPeriodStepsSaturates(t *testing.T) {
	l := &LFO{Speed: 0, Multiplier: 0}
	if p := l.PeriodSteps(); p != maxPeriodSteps {
		t.Errorf("zero speed*mult should saturate to max period, got %f", p)
	}
	l2 := &LFO{Speed: 1000, Multiplier: 1000}
	if p := l2.PeriodSteps(); p != minPeriodSteps {
		t.Errorf("huge speed*mult should saturate to min period, got %f", p)
	}
}

func TestLFORandomDeterministicForSeed(t *testing.T) {
	a := NewSeeded(42)
	a.Speed, a.Multiplier, a.Waveform, a.Depth = 64, 1, WaveRandom, 1
	b := NewSeeded(42)
	b.Speed, b.Multiplier, b.Waveform, b.Depth = 64, 1, WaveRandom, 1

	for i := 0; i < 200; i++ {
		va := a.Sample(0.01, 1)
		vb := b.Sample(0.01, 1)
		if va != vb {
			t.Fatalf("seeded random LFOs diverged at step %d: %f != %f", i, va, vb)
		}
		if math.Abs(va) > 1.0+1e-9 {
			t.Errorf("random sample exceeds depth: %f", va)
		}
	}
}

func TestLFOOneShotHoldsAfterCycle(t *testing.T) {
	l := &LFO{Speed: 64, Multiplier: 1, Waveform: WaveSin, Depth: 1, Mode: ModeOneShot}
	l.Trigger()
	// period = 32 steps
	for i := 0; i < 32; i++ {
		l.Sample(0.01, 1)
	}
	v := l.Sample(0.01, 1)
	if v != 0 {
		t.Errorf("one-shot LFO should hold at 0 after its cycle, got %f", v)
	}
}

func TestLFOModeHoldFreezesValue(t *testing.T) {
	l := &LFO{Speed: 32, Multiplier: 1, Waveform: WaveSin, Depth: 1, Mode: ModeHold, StartPhase: 0.25}
	l.Trigger()
	first := l.Sample(0.01, 1)
	for i := 0; i < 10; i++ {
		v := l.Sample(0.01, 1)
		if v != first {
			t.Errorf("held LFO value changed: %f != %f", v, first)
		}
	}
}

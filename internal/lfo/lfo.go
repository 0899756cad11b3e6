// Package lfo implements the engine's low-frequency oscillator, shared by
// per-voice LFOs, per-slot FX LFOs, and the modulation envelope's rate stage.
package lfo

import "math"

// Waveform selects the shape produced by Sample.
type Waveform int

const (
	WaveTri Waveform = iota
	WaveSin
	WaveSqr
	WaveSaw
	WaveRandom
	WaveExp
	WaveRamp
)

// Mode controls how the LFO's phase responds to note events.
type Mode int

const (
	// ModeFree runs continuously, ignoring note-on/off.
	ModeFree Mode = iota
	// ModeTrig resets phase to StartPhase on every note-on.
	ModeTrig
	// ModeHold freezes the LFO's value at note-on (reads StartPhase once).
	ModeHold
	// ModeOneShot runs once from StartPhase to the end of a cycle, then holds at 0.
	ModeOneShot
	// ModeHalfShot runs once through half a cycle, then holds.
	ModeHalfShot
)

// Cycle period bounds in sequencer steps, see spec.md §4.4 SPD x MULT table:
// period = 2048 / (speed * multiplier), saturating at 1/64-step resolution.
const (
	minPeriodSteps = 1.0 / 64.0
	maxPeriodSteps = 2048.0
)

// LFO is a per-voice or per-slot low-frequency oscillator. It is owned by the
// audio thread; all state is plain fields, no locks.
type LFO struct {
	Speed      float64 // 0..127, combines with Multiplier for the cycle period
	Multiplier float64 // table-selected multiplier, see PeriodSteps
	Fade       float64 // bipolar: >0 fades out over the note, <0 fades in
	Waveform   Waveform
	StartPhase float64 // 0..1, also doubles as Random's slew amount
	Mode       Mode
	Depth      float64 // bipolar depth applied by the caller (modmatrix)

	phase       float64 // 0..1
	randVal     float64
	randTarget  float64
	heldValue   float64
	held        bool
	oneShotDone bool
	fadeElapsed float64 // seconds since trigger, for Fade envelope
	rng         uint64  // xorshift64 state for deterministic Random waveform
}

// NewSeeded returns an LFO whose Random waveform stream is deterministic for
// a given seed (spec.md §9 determinism requirement).
func NewSeeded(seed uint64) *LFO {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &LFO{rng: seed}
}

// PeriodSteps returns the cycle period in sequencer steps for the current
// Speed x Multiplier, saturating to [1/64, 2048] step resolution.
func (l *LFO) PeriodSteps() float64 {
	denom := l.Speed * l.Multiplier
	if denom <= 0 {
		return maxPeriodSteps
	}
	period := 2048.0 / denom
	if period < minPeriodSteps {
		period = minPeriodSteps
	}
	if period > maxPeriodSteps {
		period = maxPeriodSteps
	}
	return period
}

// Trigger resets or holds the LFO according to Mode; called on note-on.
func (l *LFO) Trigger() {
	l.fadeElapsed = 0
	l.oneShotDone = false
	switch l.Mode {
	case ModeTrig:
		l.phase = wrap01(l.StartPhase)
	case ModeHold:
		l.held = true
		l.phase = wrap01(l.StartPhase)
		l.heldValue = l.wave(l.phase)
	case ModeOneShot, ModeHalfShot:
		l.phase = wrap01(l.StartPhase)
	}
}

// Reset zeros transient state (used at voice allocation).
func (l *LFO) Reset() {
	l.phase = wrap01(l.StartPhase)
	l.randVal = 0
	l.randTarget = 0
	l.held = false
	l.oneShotDone = false
	l.fadeElapsed = 0
}

// Sample advances the LFO by one control-rate tick (one sample per audio
// block, per spec.md §4.9) given the tick's duration in seconds and in
// sequencer steps, and returns the bipolar, depth- and fade-scaled output.
func (l *LFO) Sample(stepDurationSec, tickSteps float64) float64 {
	if l.Mode == ModeHold && l.held {
		return l.heldValue * l.Depth * l.fadeGain(stepDurationSec)
	}
	if (l.Mode == ModeOneShot || l.Mode == ModeHalfShot) && l.oneShotDone {
		return 0
	}

	period := l.PeriodSteps()
	if period <= 0 {
		period = maxPeriodSteps
	}
	advance := tickSteps / period

	oldPhase := l.phase
	l.phase += advance
	limit := 1.0
	if l.Mode == ModeHalfShot {
		limit = 0.5
	}
	if (l.Mode == ModeOneShot || l.Mode == ModeHalfShot) && l.phase >= limit {
		l.phase = limit
		l.oneShotDone = true
	} else {
		for l.phase >= 1.0 {
			l.phase -= 1.0
		}
	}

	if l.Waveform == WaveRandom && crossedZero(oldPhase, l.phase) {
		l.randVal = l.randTarget
		l.randTarget = l.nextRandom()
	}

	val := l.wave(l.phase)
	return val * l.Depth * l.fadeGain(stepDurationSec)
}

func (l *LFO) fadeGain(stepDurationSec float64) float64 {
	if l.Fade == 0 {
		return 1
	}
	l.fadeElapsed += stepDurationSec
	absFade := math.Abs(l.Fade)
	if absFade <= 0 {
		return 1
	}
	t := l.fadeElapsed / absFade
	if t > 1 {
		t = 1
	}
	if l.Fade > 0 {
		return 1 - t // fade out: 1 -> 0
	}
	return t // fade in: 0 -> 1
}

func (l *LFO) wave(phase float64) float64 {
	switch l.Waveform {
	case WaveSin:
		return math.Sin(phase * 2 * math.Pi)
	case WaveSqr:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSaw:
		return 1 - 2*phase
	case WaveRamp:
		return 2*phase - 1
	case WaveRandom:
		slew := l.StartPhase
		if slew <= 0 {
			return l.randVal
		}
		return l.randVal + (l.randTarget-l.randVal)*slewFactor(phase, slew)
	case WaveExp:
		return math.Exp(phase*4)/math.Exp(4)*2 - 1
	default: // WaveTri
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	}
}

func slewFactor(phase, slew float64) float64 {
	if slew >= 1 {
		return phase
	}
	f := phase / slew
	if f > 1 {
		f = 1
	}
	return f
}

// nextRandom advances the deterministic xorshift64 stream and returns a
// value in [-1, 1).
func (l *LFO) nextRandom() float64 {
	x := l.rng
	if x == 0 {
		x = 0x9E3779B97F4A7C15
	}
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	l.rng = x
	u := float64(x>>11) / float64(1<<53)
	return u*2 - 1
}

func wrap01(v float64) float64 {
	for v < 0 {
		v += 1
	}
	for v >= 1 {
		v -= 1
	}
	return v
}

func crossedZero(old, new float64) bool {
	return new < old
}

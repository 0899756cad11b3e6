// Package envelope implements the ADSR/AHD envelope generators used by a
// voice's amplitude stage, modulation stage, and the per-track filter.
// The state machine mirrors spec.md §4.6's voice state table: Idle, Attack,
// Hold/Decay, Sustain, Release, Idle.
package envelope

import "math"

// Shape selects the envelope contour.
type Shape int

const (
	ShapeADSR Shape = iota
	ShapeAHD
)

// State identifies which stage of the envelope is active.
type State int

const (
	StateIdle State = iota
	StateAttack
	StateDecay // "hold" for AHD shape
	StateSustain
	StateRelease
)

// releaseFloorDB is the level (in dB) below which, held for 16 consecutive
// samples, a voice in Release transitions to Idle (spec.md §4.6, §8).
const releaseFloorDB = -90.0

// HoldNote is a sentinel Hold duration meaning "hold for as long as the note
// is held" (AHD shape only, spec.md §4.3).
const HoldNote = -1.0

// Params configures the envelope's timing and shape.
type Params struct {
	Shape             Shape
	Attack            float64 // seconds to reach 99% of target
	Decay             float64 // seconds to reach 99% of (sustain or AHD low)
	Sustain           float64 // linear level in [0,1]; ADSR only
	Hold              float64 // seconds, or HoldNote; AHD only
	Release           float64 // seconds to reach 99% of 0 from current level
	ResetOnRetrigger  bool    // if false, a new note-on continues from current level
}

// Envelope is a per-voice envelope generator. All state is owned by the
// audio thread.
type Envelope struct {
	params Params

	state        State
	level        float64 // current output, [0,1]
	releaseStart float64 // level at the moment release began
	target       float64
	coeff        float64 // per-sample exponential coefficient for the active stage
	holdElapsed  float64
	belowFloorFor int // consecutive samples below releaseFloorDB while releasing
	noteHeld     bool
	sampleRate   float64
}

// New creates an envelope for the given sample rate.
func New(sampleRate float64) *Envelope {
	return &Envelope{sampleRate: sampleRate, state: StateIdle}
}

// SetParams updates the envelope's timing/shape; takes effect on the next
// stage transition (current stage finishes with its prior coefficients).
func (e *Envelope) SetParams(p Params) { e.params = p }

// NoteOn starts (or restarts) the envelope's attack phase.
func (e *Envelope) NoteOn() {
	e.noteHeld = true
	e.holdElapsed = 0
	e.belowFloorFor = 0
	if !e.params.ResetOnRetrigger && e.state != StateIdle {
		// continue from current level, but re-enter Attack targeting 1.0
		e.enterAttack()
		return
	}
	if e.state == StateIdle || e.params.ResetOnRetrigger {
		e.level = 0
	}
	e.enterAttack()
}

// NoteOff begins the release stage from whatever level the envelope
// currently holds, so envelopes cut off during attack/decay sound continuous
// (spec.md §4.3).
func (e *Envelope) NoteOff() {
	e.noteHeld = false
	if e.state == StateIdle {
		return
	}
	e.enterRelease()
}

// State returns the current stage.
func (e *Envelope) State() State { return e.state }

// Level returns the current output level without advancing.
func (e *Envelope) Level() float64 { return e.level }

// Idle reports whether the envelope has fully released.
func (e *Envelope) Idle() bool { return e.state == StateIdle }

// Advance steps the envelope by one sample and returns the new level.
func (e *Envelope) Advance() float64 {
	switch e.state {
	case StateIdle:
		e.level = 0
	case StateAttack:
		e.level += (e.target - e.level) * e.coeff
		if e.level >= 0.999*e.target {
			e.level = e.target
			e.enterDecay()
		}
	case StateDecay:
		e.stepDecay()
	case StateSustain:
		if e.params.Shape == ShapeAHD {
			e.stepHoldSustain()
		}
		// ADSR sustain holds at e.target (= Sustain level) until NoteOff.
	case StateRelease:
		e.level += (0 - e.level) * e.coeff
		if dbFor(e.level) < releaseFloorDB {
			e.belowFloorFor++
			if e.belowFloorFor >= 16 {
				e.state = StateIdle
				e.level = 0
			}
		} else {
			e.belowFloorFor = 0
		}
	}
	return e.level
}

func (e *Envelope) enterAttack() {
	e.state = StateAttack
	e.target = 1.0
	e.coeff = expCoeff(e.params.Attack, e.sampleRate)
}

func (e *Envelope) enterDecay() {
	e.state = StateDecay
	switch e.params.Shape {
	case ShapeAHD:
		e.target = 0 // hold then decay toward 0, handled by stepDecay/stepHoldSustain
		e.coeff = 0
		e.holdElapsed = 0
	default: // ADSR
		e.target = clamp01(e.params.Sustain)
		e.coeff = expCoeff(e.params.Decay, e.sampleRate)
	}
}

func (e *Envelope) stepDecay() {
	if e.params.Shape == ShapeAHD {
		// Hold stage: stay at 1.0 for Hold seconds (or until note released if HoldNote).
		if e.params.Hold == HoldNote {
			if !e.noteHeld {
				e.enterRelease()
			}
			return
		}
		e.holdElapsed += 1.0 / e.sampleRate
		if e.holdElapsed >= e.params.Hold {
			e.state = StateSustain
			e.target = 0
			e.coeff = expCoeff(e.params.Decay, e.sampleRate)
		}
		return
	}
	e.level += (e.target - e.level) * e.coeff
	if math.Abs(e.level-e.target) < 1e-4 {
		e.level = e.target
		e.state = StateSustain
	}
}

func (e *Envelope) stepHoldSustain() {
	// AHD: after Hold elapses this decays to 0 like a decay-release.
	e.level += (e.target - e.level) * e.coeff
	if e.level <= 1e-4 {
		e.level = 0
		e.state = StateIdle
	}
}

func (e *Envelope) enterRelease() {
	e.releaseStart = e.level
	e.state = StateRelease
	e.target = 0
	e.coeff = expCoeff(e.params.Release, e.sampleRate)
	e.belowFloorFor = 0
}

// expCoeff returns the per-sample coefficient so that, applied
// repeatedly, the envelope reaches 99% of its target within timeSec.
func expCoeff(timeSec, sampleRate float64) float64 {
	if timeSec <= 0 {
		return 1.0
	}
	n := timeSec * sampleRate
	// 1 - exp(ln(0.01)/n)
	return 1 - math.Exp(math.Log(0.01)/n)
}

func dbFor(level float64) float64 {
	if level <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(level)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

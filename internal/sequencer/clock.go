package sequencer

// PPQN is the clock resolution: pulses per quarter note.
const PPQN = 24

// MinBPM and MaxBPM bound the tempo a Clock will accept.
const (
	MinBPM = 20.0
	MaxBPM = 300.0
)

// Clock turns a sample-accurate audio stream into a pulse stream at PPQN
// resolution, the way sequencer.go's old ticksPerSamp/tickFrac/tickInt
// accumulator turned MML ticks into sample-accurate events. Here the unit is
// a clock pulse rather than an MML tick, but the accumulator shape is the
// same: a fractional rate is added every sample and whole pulses are drained.
type Clock struct {
	sampleRate      int
	bpm             float64
	scaleMultiplier float64
	pulsesPerSample float64
	accum           float64
}

// NewClock creates a Clock at 120 BPM, 1x scale.
func NewClock(sampleRate int) *Clock {
	c := &Clock{sampleRate: sampleRate, scaleMultiplier: 1}
	c.SetTempo(120)
	return c
}

// SetTempo clamps bpm to [MinBPM, MaxBPM] and recomputes the pulse rate.
func (c *Clock) SetTempo(bpm float64) {
	if bpm < MinBPM {
		bpm = MinBPM
	}
	if bpm > MaxBPM {
		bpm = MaxBPM
	}
	c.bpm = bpm
	c.recompute()
}

// BPM returns the current tempo.
func (c *Clock) BPM() float64 { return c.bpm }

// SetScaleMultiplier applies a pattern-wide speed multiplier (e.g. half-time,
// double-time) on top of the tempo.
func (c *Clock) SetScaleMultiplier(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	c.scaleMultiplier = scale
	c.recompute()
}

func (c *Clock) recompute() {
	c.pulsesPerSample = c.bpm * c.scaleMultiplier * float64(PPQN) / (60.0 * float64(c.sampleRate))
}

// Advance accumulates one sample's worth of pulses and returns how many
// whole pulses elapsed (0 or 1 at any reasonable tempo/sample rate, but
// never assumed to be exactly 1).
func (c *Clock) Advance() int {
	c.accum += c.pulsesPerSample
	n := int(c.accum)
	c.accum -= float64(n)
	return n
}

// Reset zeroes the fractional accumulator, e.g. on pattern restart so pulse
// 0 of the new pattern lands exactly on a sample boundary.
func (c *Clock) Reset() {
	c.accum = 0
}

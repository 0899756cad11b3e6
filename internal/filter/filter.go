// Package filter implements the per-voice filter bank described in spec.md
// §4.5: a biquad (LP/HP/BP/Notch/AP), a continuously-morphing multimode
// state-variable filter, and a base-width serial HP->LP pair. Every filter
// type keeps per-channel state by value so it can live inline in a Voice
// struct with no allocation on the audio thread.
package filter

import "math"

// Kind selects a biquad response.
type Kind int

const (
	KindLowPass Kind = iota
	KindHighPass
	KindBandPass
	KindNotch
	KindAllPass
)

// Biquad is a direct-form-II transposed biquad filter (RBJ cookbook
// coefficients), one instance per channel.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
	z1, z2     float64 // transposed direct-form-II state
}

// Design recomputes coefficients for the given response, cutoff (Hz), and Q.
func (bq *Biquad) Design(kind Kind, cutoffHz, q, sampleRate float64) {
	if cutoffHz <= 0 {
		cutoffHz = 1
	}
	if cutoffHz > sampleRate/2-1 {
		cutoffHz = sampleRate/2 - 1
	}
	if q <= 0 {
		q = 0.707
	}
	w0 := 2 * math.Pi * cutoffHz / sampleRate
	sinW0, cosW0 := math.Sin(w0), math.Cos(w0)
	alpha := sinW0 / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case KindLowPass:
		b0 = (1 - cosW0) / 2
		b1 = 1 - cosW0
		b2 = (1 - cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case KindHighPass:
		b0 = (1 + cosW0) / 2
		b1 = -(1 + cosW0)
		b2 = (1 + cosW0) / 2
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case KindBandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case KindNotch:
		b0 = 1
		b1 = -2 * cosW0
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	case KindAllPass:
		b0 = 1 - alpha
		b1 = -2 * cosW0
		b2 = 1 + alpha
		a0 = 1 + alpha
		a1 = -2 * cosW0
		a2 = 1 - alpha
	}
	bq.b0, bq.b1, bq.b2 = b0/a0, b1/a0, b2/a0
	bq.a1, bq.a2 = a1/a0, a2/a0
}

// Process filters one sample, transposed direct-form-II.
func (bq *Biquad) Process(in float64) float64 {
	out := bq.b0*in + bq.z1
	bq.z1 = bq.b1*in - bq.a1*out + bq.z2
	bq.z2 = bq.b2*in - bq.a2*out
	return out
}

// Reset zeros the filter's internal state.
func (bq *Biquad) Reset() { bq.z1, bq.z2 = 0, 0 }

// Multimode is the continuously-morphing LP->BP->HP state-variable filter of
// spec.md §4.5, with bipolar envelope modulation of cutoff and per-channel
// spread detune.
type Multimode struct {
	sampleRate float64
	cutoffHz   float64
	q          float64
	morphType  float64 // 0=LP .. 0.5=BP .. 1=HP
	spreadHz   float64 // per-channel detune added to the right channel

	lowL, bandL float64
	lowR, bandR float64
}

// NewMultimode creates a state-variable morph filter for the given sample rate.
func NewMultimode(sampleRate float64) *Multimode {
	return &Multimode{sampleRate: sampleRate, cutoffHz: 1000, q: 0.707, morphType: 0}
}

// Configure sets the filter's cutoff, resonance, morph position in [0,1], and
// stereo spread (Hz added to the right channel's cutoff).
func (m *Multimode) Configure(cutoffHz, resonance, morphType, spreadHz float64) {
	m.cutoffHz = cutoffHz
	m.q = resonance
	m.morphType = clamp01(morphType)
	m.spreadHz = spreadHz
}

// ProcessStereo runs one SVF step for both channels with an additional
// bipolar cutoff modulation (e.g. from an envelope), in Hz.
func (m *Multimode) ProcessStereo(inL, inR, cutoffModHz float64) (float64, float64) {
	outL := m.step(inL, m.cutoffHz+cutoffModHz, &m.lowL, &m.bandL)
	outR := m.step(inR, m.cutoffHz+m.spreadHz+cutoffModHz, &m.lowR, &m.bandR)
	return outL, outR
}

func (m *Multimode) step(in, cutoffHz float64, low, band *float64) float64 {
	if cutoffHz < 1 {
		cutoffHz = 1
	}
	nyquist := m.sampleRate / 2
	if cutoffHz > nyquist-1 {
		cutoffHz = nyquist - 1
	}
	f := 2 * math.Sin(math.Pi*cutoffHz/m.sampleRate)
	damping := 1.0
	if m.q > 0 {
		damping = 1.0 / m.q
	}
	high := in - *low - damping**band
	*band += f * high
	*low += f * *band

	// Morph across LP(0) -> BP(0.5) -> HP(1).
	if m.morphType <= 0.5 {
		t := m.morphType * 2
		return *low*(1-t) + *band*t
	}
	t := (m.morphType - 0.5) * 2
	return *band*(1-t) + high*t
}

// Reset zeros filter state.
func (m *Multimode) Reset() { m.lowL, m.bandL, m.lowR, m.bandR = 0, 0, 0, 0 }

// BaseWidth is the serial HP->LP pair of spec.md §4.5, parameterized by a
// low cutoff (base) and a passband width above it.
//
// Edge cases (spec.md §4.5):
//   - width == 0 collapses to a band-pass at base.
//   - base == 0 reduces to a low-pass at frequency width.
//   - width == max && base == 0 bypasses entirely.
type BaseWidth struct {
	sampleRate float64
	hp, lp     Biquad
	base, width float64
	maxWidth   float64
}

// NewBaseWidth creates a base/width filter pair for the given sample rate.
// maxWidth should be set to the engine's practical Nyquist-bounded ceiling.
func NewBaseWidth(sampleRate, maxWidth float64) *BaseWidth {
	bw := &BaseWidth{sampleRate: sampleRate, maxWidth: maxWidth}
	bw.Configure(0, maxWidth)
	return bw
}

// Configure sets base (low cutoff, Hz) and width (passband width above base, Hz).
func (bw *BaseWidth) Configure(base, width float64) {
	bw.base, bw.width = base, width
	switch {
	case width == bw.maxWidth && base == 0:
		// bypass; Process short-circuits
	case width == 0:
		bw.hp.Design(KindBandPass, math.Max(base, 1), 1.0, bw.sampleRate)
		bw.lp.Design(KindBandPass, math.Max(base, 1), 1.0, bw.sampleRate)
	case base == 0:
		bw.hp.Design(KindLowPass, math.Max(width, 1), 0.707, bw.sampleRate)
		bw.lp.Design(KindLowPass, math.Max(width, 1), 0.707, bw.sampleRate)
	default:
		bw.hp.Design(KindHighPass, math.Max(base, 1), 0.707, bw.sampleRate)
		bw.lp.Design(KindLowPass, math.Max(base+width, base+1), 0.707, bw.sampleRate)
	}
}

// Process filters one sample through the serial HP->LP pair (or bypasses).
func (bw *BaseWidth) Process(in float64) float64 {
	if bw.width == bw.maxWidth && bw.base == 0 {
		return in
	}
	return bw.lp.Process(bw.hp.Process(in))
}

// Reset zeros both stages.
func (bw *BaseWidth) Reset() {
	bw.hp.Reset()
	bw.lp.Reset()
}

// Overdrive is the soft-clipping pre-amp stage placed in the configurable
// chain alongside the two filters (spec.md §4.5, §4.7).
type Overdrive struct {
	Gain float64 // pre-amp gain, 1.0 = unity
}

// Process soft-clips one sample via tanh waveshaping.
func (o Overdrive) Process(in float64) float64 {
	if o.Gain <= 0 {
		return in
	}
	return math.Tanh(in * o.Gain)
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

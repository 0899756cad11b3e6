package effects

import "github.com/nortledge/strata/internal/filter"

// MultimodeFX exposes the per-voice state-variable morph filter
// (internal/filter.Multimode) as an insert effect, so a track's send/bus
// chain can apply the same continuously-morphing LP->BP->HP filter used on
// individual voices.
type MultimodeFX struct {
	Base

	inner *filter.Multimode

	cutoffHz  smoothedParam
	resonance smoothedParam
	morph     smoothedParam // 0=LP .. 0.5=BP .. 1=HP
	mix       smoothedParam
}

func NewMultimodeFX(sampleRate int) *MultimodeFX {
	return &MultimodeFX{
		Base:      NewBase(128),
		inner:     filter.NewMultimode(float64(sampleRate)),
		cutoffHz:  newSmoothedParam(1200),
		resonance: newSmoothedParam(0.9),
		morph:     newSmoothedParam(0),
		mix:       newSmoothedParam(1),
	}
}

func (m *MultimodeFX) SetCutoffHz(v float32)  { m.cutoffHz.Set(v, m.blockSize) }
func (m *MultimodeFX) SetResonance(v float32) { m.resonance.Set(v, m.blockSize) }
func (m *MultimodeFX) SetMorph(v float32)     { m.morph.Set(clamp(v, 0, 1), m.blockSize) }
func (m *MultimodeFX) SetMix(v float32)       { m.mix.Set(clamp(v, 0, 1), m.blockSize) }

func (m *MultimodeFX) Process(l, r float32) (float32, float32) {
	if !m.Enabled {
		return l, r
	}
	cutoff := m.cutoffHz.Next()
	q := m.resonance.Next()
	morph := m.morph.Next()
	mix := m.mix.Next()

	m.inner.Configure(float64(cutoff), float64(q), float64(morph), 0)
	outL, outR := m.inner.ProcessStereo(float64(l), float64(r), 0)
	return l*(1-mix) + float32(outL)*mix, r*(1-mix) + float32(outR)*mix
}

func (m *MultimodeFX) Reset() { m.inner.Reset() }

package effects

import "github.com/nortledge/strata/internal/filter"

// LowPass is a simple resonant lowpass insert, built on the same RBJ biquad
// used by the per-voice filter bank.
type LowPass struct {
	Base

	sampleRate float64
	bqL, bqR   filter.Biquad

	cutoffHz   smoothedParam
	resonance  smoothedParam
	lastCutoff float32
	lastQ      float32
}

func NewLowPassFX(sampleRate int) *LowPass {
	lp := &LowPass{
		Base:       NewBase(128),
		sampleRate: float64(sampleRate),
		cutoffHz:   newSmoothedParam(4000),
		resonance:  newSmoothedParam(0.707),
	}
	lp.redesign(4000, 0.707)
	return lp
}

func (lp *LowPass) SetCutoffHz(v float32)  { lp.cutoffHz.Set(v, lp.blockSize) }
func (lp *LowPass) SetResonance(v float32) { lp.resonance.Set(v, lp.blockSize) }

func (lp *LowPass) redesign(cutoff, q float32) {
	lp.bqL.Design(filter.KindLowPass, float64(cutoff), float64(q), lp.sampleRate)
	lp.bqR.Design(filter.KindLowPass, float64(cutoff), float64(q), lp.sampleRate)
	lp.lastCutoff, lp.lastQ = cutoff, q
}

func (lp *LowPass) Process(l, r float32) (float32, float32) {
	if !lp.Enabled {
		return l, r
	}
	cutoff := lp.cutoffHz.Next()
	q := lp.resonance.Next()
	if cutoff != lp.lastCutoff || q != lp.lastQ {
		lp.redesign(cutoff, q)
	}
	return float32(lp.bqL.Process(float64(l))), float32(lp.bqR.Process(float64(r)))
}

func (lp *LowPass) Reset() {
	lp.bqL.Reset()
	lp.bqR.Reset()
}

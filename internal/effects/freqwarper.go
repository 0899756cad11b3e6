package effects

import "math"

// FreqWarper is a ring modulator: the input is multiplied by a sine
// oscillator at carrierHz, shifting and folding its spectrum rather than
// simply filtering it ("warping" the frequency content).
type FreqWarper struct {
	Base

	sampleRate int
	phase      float64

	carrierHz smoothedParam
	mix       smoothedParam
}

func NewFreqWarper(sampleRate int) *FreqWarper {
	return &FreqWarper{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		carrierHz:  newSmoothedParam(150),
		mix:        newSmoothedParam(0.5),
	}
}

func (f *FreqWarper) SetCarrierHz(v float32) { f.carrierHz.Set(v, f.blockSize) }
func (f *FreqWarper) SetMix(v float32)       { f.mix.Set(clamp(v, 0, 1), f.blockSize) }

func (f *FreqWarper) Process(l, r float32) (float32, float32) {
	if !f.Enabled {
		return l, r
	}
	carrier := f.carrierHz.Next()
	mix := f.mix.Next()

	osc := float32(math.Sin(f.phase))
	f.phase += 2 * math.Pi * float64(carrier) / float64(f.sampleRate)
	if f.phase > 2*math.Pi {
		f.phase -= 2 * math.Pi
	}

	warpedL := l * osc
	warpedR := r * osc
	return l*(1-mix) + warpedL*mix, r*(1-mix) + warpedR*mix
}

func (f *FreqWarper) Reset() { f.phase = 0 }

package effects

import "math"

// Flanger reuses Chorus's modulated-delay-line technique with a much
// shorter base delay and a higher feedback ceiling, producing the tighter
// metallic sweep a flanger needs instead of chorus's gentle doubling.
type Flanger struct {
	Base

	sampleRate int
	bufL, bufR []float32
	pos        int
	phase      float64

	rateHz   smoothedParam
	depthMs  smoothedParam
	feedback smoothedParam
	wet      smoothedParam
}

func NewFlanger(sampleRate int) *Flanger {
	f := &Flanger{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		rateHz:     newSmoothedParam(0.25),
		depthMs:    newSmoothedParam(2),
		feedback:   newSmoothedParam(0.6),
		wet:        newSmoothedParam(0.5),
	}
	f.allocate(2)
	return f
}

func (f *Flanger) allocate(depthMs float32) {
	depthSamples := float64(depthMs) * float64(f.sampleRate) / 1000.0
	size := int(depthSamples)*2 + 4
	if size < 4 {
		size = 4
	}
	f.bufL = make([]float32, size)
	f.bufR = make([]float32, size)
	f.pos = 0
}

func (f *Flanger) SetRateHz(v float32)   { f.rateHz.Set(v, f.blockSize) }
func (f *Flanger) SetDepthMs(v float32)  { f.depthMs.Set(v, f.blockSize) }
func (f *Flanger) SetFeedback(v float32) { f.feedback.Set(clamp(v, 0, 0.95), f.blockSize) }
func (f *Flanger) SetWet(v float32)      { f.wet.Set(clamp(v, 0, 1), f.blockSize) }

func (f *Flanger) Process(l, r float32) (float32, float32) {
	if !f.Enabled {
		return l, r
	}
	rateHz := f.rateHz.Next()
	depthMs := f.depthMs.Next()
	feedback := f.feedback.Next()
	wet := f.wet.Next()

	depthSamples := float64(depthMs) * float64(f.sampleRate) / 1000.0
	wantSize := int(depthSamples)*2 + 4
	if wantSize < 4 {
		wantSize = 4
	}
	if wantSize != len(f.bufL) {
		f.allocate(depthMs)
	}

	rate := 2.0 * math.Pi * float64(rateHz) / float64(f.sampleRate)
	mod := (float32(math.Sin(f.phase))/2 + 0.5) * float32(depthSamples)
	f.phase += rate
	if f.phase > 2*math.Pi {
		f.phase -= 2 * math.Pi
	}

	f.bufL[f.pos] = l
	f.bufR[f.pos] = r

	delay := 1 + mod
	readPos := float32(f.pos) - delay
	for readPos < 0 {
		readPos += float32(len(f.bufL))
	}
	idx := int(readPos)
	frac := readPos - float32(idx)
	idx2 := idx + 1
	if idx2 >= len(f.bufL) {
		idx2 = 0
	}
	delL := f.bufL[idx]*(1-frac) + f.bufL[idx2]*frac
	delR := f.bufR[idx]*(1-frac) + f.bufR[idx2]*frac

	f.bufL[f.pos] += delL * feedback
	f.bufR[f.pos] += delR * feedback

	f.pos++
	if f.pos >= len(f.bufL) {
		f.pos = 0
	}
	return l*(1-wet) + delL*wet, r*(1-wet) + delR*wet
}

func (f *Flanger) Reset() {
	for i := range f.bufL {
		f.bufL[i] = 0
		f.bufR[i] = 0
	}
	f.pos = 0
	f.phase = 0
}

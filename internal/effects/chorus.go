package effects

import "math"

// Chorus is a modulated delay line (sine LFO reading back through the
// buffer with a fractional offset); Flanger reuses the same modulated-delay
// technique with a shorter base delay and higher feedback.
type Chorus struct {
	Base

	sampleRate int
	bufL, bufR []float32
	pos        int
	phase      float64

	delayMs  smoothedParam
	depthMs  smoothedParam
	rateHz   smoothedParam
	feedback smoothedParam
	wet      smoothedParam
}

func NewChorus(sampleRate int) *Chorus {
	c := &Chorus{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		delayMs:    newSmoothedParam(18),
		depthMs:    newSmoothedParam(6),
		rateHz:     newSmoothedParam(0.8),
		feedback:   newSmoothedParam(0.15),
		wet:        newSmoothedParam(0.5),
	}
	c.allocate(18, 6)
	return c
}

func (c *Chorus) allocate(delayMs, depthMs float32) {
	baseSamples := int(float64(delayMs) * float64(c.sampleRate) / 1000.0)
	depthSamples := float64(depthMs) * float64(c.sampleRate) / 1000.0
	size := baseSamples + int(depthSamples) + 2
	if size < 4 {
		size = 4
	}
	c.bufL = make([]float32, size)
	c.bufR = make([]float32, size)
	c.pos = 0
}

func (c *Chorus) SetDelayMs(v float32)  { c.delayMs.Set(v, c.blockSize) }
func (c *Chorus) SetDepthMs(v float32)  { c.depthMs.Set(v, c.blockSize) }
func (c *Chorus) SetRateHz(v float32)   { c.rateHz.Set(v, c.blockSize) }
func (c *Chorus) SetFeedback(v float32) { c.feedback.Set(clamp(v, 0, 0.9), c.blockSize) }
func (c *Chorus) SetWet(v float32)      { c.wet.Set(clamp(v, 0, 1), c.blockSize) }

func (c *Chorus) Process(l, r float32) (float32, float32) {
	if !c.Enabled {
		return l, r
	}
	delayMs := c.delayMs.Next()
	depthMs := c.depthMs.Next()
	rateHz := c.rateHz.Next()
	feedback := c.feedback.Next()
	wet := c.wet.Next()

	baseSamples := int(float64(delayMs) * float64(c.sampleRate) / 1000.0)
	depthSamples := float64(depthMs) * float64(c.sampleRate) / 1000.0
	wantSize := baseSamples + int(depthSamples) + 2
	if wantSize < 4 {
		wantSize = 4
	}
	if wantSize != len(c.bufL) {
		c.allocate(delayMs, depthMs)
	}

	rate := 2.0 * math.Pi * float64(rateHz) / float64(c.sampleRate)
	mod := float32(math.Sin(c.phase)) * float32(depthSamples)
	c.phase += rate
	if c.phase > 2*math.Pi {
		c.phase -= 2 * math.Pi
	}

	c.bufL[c.pos] = l
	c.bufR[c.pos] = r

	delay := float32(len(c.bufL)/2) + mod
	readPos := float32(c.pos) - delay
	for readPos < 0 {
		readPos += float32(len(c.bufL))
	}
	idx := int(readPos)
	frac := readPos - float32(idx)
	idx2 := idx + 1
	if idx2 >= len(c.bufL) {
		idx2 = 0
	}
	delL := c.bufL[idx]*(1-frac) + c.bufL[idx2]*frac
	delR := c.bufR[idx]*(1-frac) + c.bufR[idx2]*frac

	c.bufL[c.pos] += delL * feedback
	c.bufR[c.pos] += delR * feedback

	c.pos++
	if c.pos >= len(c.bufL) {
		c.pos = 0
	}
	return l*(1-wet) + delL*wet, r*(1-wet) + delR*wet
}

func (c *Chorus) Reset() {
	for i := range c.bufL {
		c.bufL[i] = 0
		c.bufR[i] = 0
	}
	c.pos = 0
	c.phase = 0
}

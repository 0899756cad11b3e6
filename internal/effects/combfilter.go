package effects

// CombFilter is a tuned feedback comb (a single one of Reverb's comb
// stages exposed directly as its own effect, with the delay length driven
// by a frequency parameter instead of a fixed room-size ratio).
type CombFilter struct {
	Base

	sampleRate int
	bufL, bufR []float32
	pos        int

	freqHz   smoothedParam
	feedback smoothedParam
	wet      smoothedParam
}

func NewCombFilter(sampleRate int) *CombFilter {
	c := &CombFilter{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		freqHz:     newSmoothedParam(220),
		feedback:   newSmoothedParam(0.7),
		wet:        newSmoothedParam(0.5),
	}
	c.allocate(220)
	return c
}

func (c *CombFilter) allocate(freqHz float32) {
	n := int(float64(c.sampleRate) / float64(maxFloat32(freqHz, 20)))
	if n < 1 {
		n = 1
	}
	c.bufL = make([]float32, n)
	c.bufR = make([]float32, n)
	c.pos = 0
}

func maxFloat32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func (c *CombFilter) SetFreqHz(v float32)   { c.freqHz.Set(v, c.blockSize) }
func (c *CombFilter) SetFeedback(v float32) { c.feedback.Set(clamp(v, -0.97, 0.97), c.blockSize) }
func (c *CombFilter) SetWet(v float32)      { c.wet.Set(clamp(v, 0, 1), c.blockSize) }

func (c *CombFilter) Process(l, r float32) (float32, float32) {
	if !c.Enabled {
		return l, r
	}
	freq := c.freqHz.Next()
	fb := c.feedback.Next()
	wet := c.wet.Next()

	want := int(float64(c.sampleRate) / float64(maxFloat32(freq, 20)))
	if want < 1 {
		want = 1
	}
	if want > len(c.bufL) {
		// Grow with headroom so a falling frequency ramp does not
		// reallocate (and clear the line) on every sample.
		c.allocate(freq / 2)
	}

	readPos := c.pos - want
	if readPos < 0 {
		readPos += len(c.bufL)
	}
	delL := c.bufL[readPos]
	delR := c.bufR[readPos]
	c.bufL[c.pos] = l + delL*fb
	c.bufR[c.pos] = r + delR*fb
	c.pos++
	if c.pos >= len(c.bufL) {
		c.pos = 0
	}
	return l*(1-wet) + delL*wet, r*(1-wet) + delR*wet
}

func (c *CombFilter) Reset() {
	for i := range c.bufL {
		c.bufL[i] = 0
		c.bufR[i] = 0
	}
	c.pos = 0
}

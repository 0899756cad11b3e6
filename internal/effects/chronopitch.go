package effects

import "math"

// ChronoPitch is a real-time granular pitch shifter: two read heads trail
// the write head through a circular buffer at a rate offset by the pitch
// ratio, half a grain apart, each weighted by a triangular window so they
// crossfade seamlessly as one wraps and the other takes over.
type ChronoPitch struct {
	Base

	sampleRate int
	buf        []float32
	writePos   int
	read1      float64 // offset behind writePos, in samples
	read2      float64

	semitones smoothedParam
	grainMs   smoothedParam
	mix       smoothedParam

	grainSamples float64
}

func NewChronoPitch(sampleRate int) *ChronoPitch {
	c := &ChronoPitch{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		semitones:  newSmoothedParam(0),
		grainMs:    newSmoothedParam(80),
		mix:        newSmoothedParam(1),
	}
	c.allocate(80)
	return c
}

func (c *ChronoPitch) allocate(grainMs float32) {
	c.grainSamples = float64(grainMs) * float64(c.sampleRate) / 1000.0
	size := int(c.grainSamples)*3 + 8
	if size < 8 {
		size = 8
	}
	c.buf = make([]float32, size)
	c.writePos = 0
	c.read1 = c.grainSamples
	c.read2 = c.grainSamples / 2
}

func (c *ChronoPitch) SetSemitones(v float32) { c.semitones.Set(v, c.blockSize) }
func (c *ChronoPitch) SetGrainMs(v float32)   { c.grainMs.Set(v, c.blockSize) }
func (c *ChronoPitch) SetMix(v float32)       { c.mix.Set(clamp(v, 0, 1), c.blockSize) }

func (c *ChronoPitch) Process(l, r float32) (float32, float32) {
	if !c.Enabled {
		return l, r
	}
	semitones := c.semitones.Next()
	grainMs := c.grainMs.Next()
	mix := c.mix.Next()

	wantGrain := float64(grainMs) * float64(c.sampleRate) / 1000.0
	if math.Abs(wantGrain-c.grainSamples) > 1 {
		c.allocate(grainMs)
	}

	mono := (l + r) * 0.5
	c.buf[c.writePos] = mono

	ratio := math.Exp2(float64(semitones) / 12.0)
	step := 1 - ratio

	out1 := c.readInterp(c.read1) * c.grainWindow(c.read1)
	out2 := c.readInterp(c.read2) * c.grainWindow(c.read2)
	wSum := c.grainWindow(c.read1) + c.grainWindow(c.read2)
	var shifted float32
	if wSum > 0.001 {
		shifted = (out1 + out2) / float32(wSum)
	}

	c.read1 += step
	c.read2 += step
	if c.read1 < 0 {
		c.read1 += c.grainSamples
	} else if c.read1 >= c.grainSamples {
		c.read1 -= c.grainSamples
	}
	if c.read2 < 0 {
		c.read2 += c.grainSamples
	} else if c.read2 >= c.grainSamples {
		c.read2 -= c.grainSamples
	}

	c.writePos++
	if c.writePos >= len(c.buf) {
		c.writePos = 0
	}

	outL := l*(1-mix) + shifted*mix
	outR := r*(1-mix) + shifted*mix
	return outL, outR
}

// grainWindow returns a triangular fade (0 at the grain's edges, 1 at its
// center) for a read-head offset currently at `offset` samples into its grain.
func (c *ChronoPitch) grainWindow(offset float64) float32 {
	if c.grainSamples <= 0 {
		return 1
	}
	t := offset / c.grainSamples
	if t < 0.5 {
		return float32(2 * t)
	}
	return float32(2 * (1 - t))
}

func (c *ChronoPitch) readInterp(behind float64) float32 {
	pos := float64(c.writePos) - behind
	n := float64(len(c.buf))
	for pos < 0 {
		pos += n
	}
	idx := int(pos)
	frac := float32(pos - float64(idx))
	idx2 := idx + 1
	if idx2 >= len(c.buf) {
		idx2 = 0
	}
	return c.buf[idx]*(1-frac) + c.buf[idx2]*frac
}

func (c *ChronoPitch) Reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.writePos = 0
	c.read1 = c.grainSamples
	c.read2 = c.grainSamples / 2
}

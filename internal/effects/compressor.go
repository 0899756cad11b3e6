package effects

import "math"

// Compressor is a feedforward peak compressor with a smoothed parameter
// surface layered over the original envelope-follower/gain-computer design.
type Compressor struct {
	Base

	sampleRate int

	thresholdDB smoothedParam
	ratio       smoothedParam
	attackMs    smoothedParam
	releaseMs   smoothedParam
	makeupDB    smoothedParam

	envL, envR float32
}

func NewCompressor(sampleRate int) *Compressor {
	return &Compressor{
		Base:        NewBase(128),
		sampleRate:  sampleRate,
		thresholdDB: newSmoothedParam(-18),
		ratio:       newSmoothedParam(4),
		attackMs:    newSmoothedParam(5),
		releaseMs:   newSmoothedParam(80),
		makeupDB:    newSmoothedParam(0),
	}
}

func (c *Compressor) SetThresholdDB(v float32) { c.thresholdDB.Set(v, c.blockSize) }
func (c *Compressor) SetRatio(v float32)       { c.ratio.Set(v, c.blockSize) }
func (c *Compressor) SetAttackMs(v float32)    { c.attackMs.Set(v, c.blockSize) }
func (c *Compressor) SetReleaseMs(v float32)   { c.releaseMs.Set(v, c.blockSize) }
func (c *Compressor) SetMakeupDB(v float32)    { c.makeupDB.Set(v, c.blockSize) }

func (c *Compressor) Process(l, r float32) (float32, float32) {
	if !c.Enabled {
		return l, r
	}
	thresholdDB := c.thresholdDB.Next()
	ratio := c.ratio.Next()
	attackMs := c.attackMs.Next()
	releaseMs := c.releaseMs.Next()
	makeupDB := c.makeupDB.Next()

	threshold := float32(math.Pow(10, float64(thresholdDB)/20))
	sr := float64(c.sampleRate)
	attack := float32(1.0 - math.Exp(-1.0/(float64(attackMs)*sr/1000.0)))
	release := float32(1.0 - math.Exp(-1.0/(float64(releaseMs)*sr/1000.0)))
	makeup := float32(math.Pow(10, float64(makeupDB)/20))

	absL := float32(math.Abs(float64(l)))
	absR := float32(math.Abs(float64(r)))
	if absL > c.envL {
		c.envL += attack * (absL - c.envL)
	} else {
		c.envL += release * (absL - c.envL)
	}
	if absR > c.envR {
		c.envR += attack * (absR - c.envR)
	} else {
		c.envR += release * (absR - c.envR)
	}

	gainL := computeCompressorGain(c.envL, threshold, ratio)
	gainR := computeCompressorGain(c.envR, threshold, ratio)
	return l * gainL * makeup, r * gainR * makeup
}

func computeCompressorGain(env, threshold, ratio float32) float32 {
	if env <= threshold || threshold <= 0 {
		return 1.0
	}
	over := env / threshold
	return float32(math.Pow(float64(over), float64(1.0/ratio-1)))
}

func (c *Compressor) Reset() {
	c.envL = 0
	c.envR = 0
}

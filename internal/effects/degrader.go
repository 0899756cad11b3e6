package effects

import "math"

// Degrader combines bit-depth reduction and sample-and-hold downsampling
// for lo-fi/crunch textures.
type Degrader struct {
	Base

	bits      smoothedParam // 1..16
	downsample smoothedParam // 1..32, hold-sample count
	wet        smoothedParam

	holdL, holdR float32
	counter      int
}

func NewDegrader(sampleRate int) *Degrader {
	return &Degrader{
		Base:       NewBase(128),
		bits:       newSmoothedParam(16),
		downsample: newSmoothedParam(1),
		wet:        newSmoothedParam(1),
	}
}

func (d *Degrader) SetBits(v float32)       { d.bits.Set(clamp(v, 1, 16), d.blockSize) }
func (d *Degrader) SetDownsample(v float32) { d.downsample.Set(clamp(v, 1, 32), d.blockSize) }
func (d *Degrader) SetWet(v float32)        { d.wet.Set(clamp(v, 0, 1), d.blockSize) }

func (d *Degrader) Process(l, r float32) (float32, float32) {
	if !d.Enabled {
		return l, r
	}
	bits := d.bits.Next()
	downsample := d.downsample.Next()
	wet := d.wet.Next()

	step := maxInt(1, int(downsample))
	if d.counter%step == 0 {
		levels := float32(math.Pow(2, float64(bits)))
		d.holdL = quantize(l, levels)
		d.holdR = quantize(r, levels)
	}
	d.counter++

	return l*(1-wet) + d.holdL*wet, r*(1-wet) + d.holdR*wet
}

func quantize(v float32, levels float32) float32 {
	if levels <= 1 {
		return v
	}
	return float32(math.Round(float64(v*levels))) / levels
}

func (d *Degrader) Reset() {
	d.holdL, d.holdR = 0, 0
	d.counter = 0
}

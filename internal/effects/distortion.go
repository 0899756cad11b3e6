package effects

import "math"

// Dirtshaper is a tanh waveshaper with pre/post gain and a post lowpass,
// adapted from the original Distortion effect with smoothed parameters and
// an added bit-crush-style grit stage.
type Dirtshaper struct {
	Base

	sampleRate int

	preGain  smoothedParam
	postGain smoothedParam
	tone     smoothedParam // 0..1, lowpass cutoff amount
	grit     smoothedParam // 0..1, sample-and-hold step size

	lpfL, lpfR     float32
	gritHoldL      float32
	gritHoldR      float32
	gritCounter    int
}

func NewDirtshaper(sampleRate int) *Dirtshaper {
	return &Dirtshaper{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		preGain:    newSmoothedParam(3),
		postGain:   newSmoothedParam(0.5),
		tone:       newSmoothedParam(1),
		grit:       newSmoothedParam(0),
	}
}

func (d *Dirtshaper) SetPreGain(v float32)  { d.preGain.Set(v, d.blockSize) }
func (d *Dirtshaper) SetPostGain(v float32) { d.postGain.Set(v, d.blockSize) }
func (d *Dirtshaper) SetTone(v float32)     { d.tone.Set(clamp(v, 0, 1), d.blockSize) }
func (d *Dirtshaper) SetGrit(v float32)     { d.grit.Set(clamp(v, 0, 1), d.blockSize) }

func (d *Dirtshaper) Process(l, r float32) (float32, float32) {
	if !d.Enabled {
		return l, r
	}
	pre := d.preGain.Next()
	post := d.postGain.Next()
	tone := d.tone.Next()
	grit := d.grit.Next()

	l *= pre
	r *= pre
	l = float32(math.Tanh(float64(l)))
	r = float32(math.Tanh(float64(r)))
	l *= post
	r *= post

	if tone < 1 {
		alpha := float32(0.02) + tone*0.9
		d.lpfL += alpha * (l - d.lpfL)
		d.lpfR += alpha * (r - d.lpfR)
		l, r = d.lpfL, d.lpfR
	}

	if grit > 0 {
		step := maxInt(1, int(grit*32))
		if d.gritCounter%step == 0 {
			d.gritHoldL, d.gritHoldR = l, r
		}
		d.gritCounter++
		l, r = d.gritHoldL, d.gritHoldR
	}

	return l, r
}

func (d *Dirtshaper) Reset() {
	d.lpfL, d.lpfR = 0, 0
	d.gritHoldL, d.gritHoldR = 0, 0
	d.gritCounter = 0
}

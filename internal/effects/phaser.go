package effects

import (
	"math"

	"github.com/nortledge/strata/internal/filter"
)

const phaserStages = 4

// Phaser cascades allpass biquads whose shared cutoff is swept by a sine
// LFO, then mixes the phase-shifted signal back with the dry signal to
// produce the classic notch sweep.
type Phaser struct {
	Base

	sampleRate float64
	stagesL    [phaserStages]filter.Biquad
	stagesR    [phaserStages]filter.Biquad
	phase      float64

	rateHz   smoothedParam
	depth    smoothedParam // 0..1, sweep range around center
	centerHz smoothedParam
	feedback smoothedParam
	wet      smoothedParam

	fbL, fbR float32
}

func NewPhaser(sampleRate int) *Phaser {
	return &Phaser{
		Base:       NewBase(128),
		sampleRate: float64(sampleRate),
		rateHz:     newSmoothedParam(0.4),
		depth:      newSmoothedParam(0.8),
		centerHz:   newSmoothedParam(800),
		feedback:   newSmoothedParam(0.3),
		wet:        newSmoothedParam(0.5),
	}
}

func (p *Phaser) SetRateHz(v float32)   { p.rateHz.Set(v, p.blockSize) }
func (p *Phaser) SetDepth(v float32)    { p.depth.Set(clamp(v, 0, 1), p.blockSize) }
func (p *Phaser) SetCenterHz(v float32) { p.centerHz.Set(v, p.blockSize) }
func (p *Phaser) SetFeedback(v float32) { p.feedback.Set(clamp(v, 0, 0.9), p.blockSize) }
func (p *Phaser) SetWet(v float32)      { p.wet.Set(clamp(v, 0, 1), p.blockSize) }

func (p *Phaser) Process(l, r float32) (float32, float32) {
	if !p.Enabled {
		return l, r
	}
	rateHz := p.rateHz.Next()
	depth := p.depth.Next()
	center := p.centerHz.Next()
	feedback := p.feedback.Next()
	wet := p.wet.Next()

	sweep := (math.Sin(p.phase) + 1) / 2
	p.phase += 2 * math.Pi * float64(rateHz) / p.sampleRate
	if p.phase > 2*math.Pi {
		p.phase -= 2 * math.Pi
	}

	cutoff := float64(center) * (1 + float64(depth)*(sweep-0.5))
	if cutoff < 20 {
		cutoff = 20
	}

	inL := l + p.fbL*feedback
	inR := r + p.fbR*feedback
	outL, outR := float64(inL), float64(inR)
	for i := 0; i < phaserStages; i++ {
		p.stagesL[i].Design(filter.KindAllPass, cutoff, 0.707, p.sampleRate)
		p.stagesR[i].Design(filter.KindAllPass, cutoff, 0.707, p.sampleRate)
		outL = p.stagesL[i].Process(outL)
		outR = p.stagesR[i].Process(outR)
	}
	p.fbL, p.fbR = float32(outL), float32(outR)

	return l*(1-wet) + float32(outL)*wet, r*(1-wet) + float32(outR)*wet
}

func (p *Phaser) Reset() {
	for i := 0; i < phaserStages; i++ {
		p.stagesL[i].Reset()
		p.stagesR[i].Reset()
	}
	p.phase = 0
	p.fbL, p.fbR = 0, 0
}

package effects

import "math"

const filterbankBands = 8

// Filterbank is an 8-band equalizer, generalizing the original EQ3Band/
// EQ5Band crossover-cascade technique (successive one-pole lowpass splits,
// each remainder feeding the next crossover) from 5 bands to 8.
type Filterbank struct {
	Base

	alphas [filterbankBands - 1]float32
	lpL    [filterbankBands - 1]float32
	lpR    [filterbankBands - 1]float32
	gains  [filterbankBands]smoothedParam
}

var filterbankCrossovers = [filterbankBands - 1]float64{80, 200, 500, 1200, 2500, 5000, 9000}

func NewFilterbank(sampleRate int) *Filterbank {
	fb := &Filterbank{Base: NewBase(128)}
	dt := 1.0 / float64(sampleRate)
	for i, freq := range filterbankCrossovers {
		rc := 1.0 / (2.0 * math.Pi * freq)
		fb.alphas[i] = float32(dt / (rc + dt))
	}
	for i := range fb.gains {
		fb.gains[i] = newSmoothedParam(1.0)
	}
	return fb
}

// SetGain sets band (0..7) gain; 1.0 = unity, 0 = silence, 2.0 = +6dB.
func (fb *Filterbank) SetGain(band int, gain float32) {
	if band < 0 || band >= filterbankBands {
		return
	}
	fb.gains[band].Set(gain, fb.blockSize)
}

func (fb *Filterbank) Process(l, r float32) (float32, float32) {
	if !fb.Enabled {
		return l, r
	}
	var bandL, bandR [filterbankBands]float32
	remL, remR := l, r
	for i := 0; i < filterbankBands-1; i++ {
		fb.lpL[i] += fb.alphas[i] * (remL - fb.lpL[i])
		fb.lpR[i] += fb.alphas[i] * (remR - fb.lpR[i])
		bandL[i] = fb.lpL[i]
		bandR[i] = fb.lpR[i]
		remL -= bandL[i]
		remR -= bandR[i]
	}
	bandL[filterbankBands-1] = remL
	bandR[filterbankBands-1] = remR

	var outL, outR float32
	for i := 0; i < filterbankBands; i++ {
		g := fb.gains[i].Next()
		outL += bandL[i] * g
		outR += bandR[i] * g
	}
	return outL, outR
}

func (fb *Filterbank) Reset() {
	for i := range fb.lpL {
		fb.lpL[i] = 0
		fb.lpR[i] = 0
	}
}

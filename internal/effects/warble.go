package effects

import "math"

// Warble is a subtle combined vibrato (short modulated delay) and tremolo
// (amplitude LFO), reusing the modulated-delay technique at a much smaller
// depth than Chorus/Flanger for a tape-wow character.
type Warble struct {
	Base

	sampleRate int
	bufL, bufR []float32
	pos        int
	pitchPhase float64
	ampPhase   float64

	rateHz    smoothedParam
	pitchDepth smoothedParam // ms
	ampDepth   smoothedParam // 0..1
	wet        smoothedParam
}

func NewWarble(sampleRate int) *Warble {
	w := &Warble{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		rateHz:     newSmoothedParam(4.5),
		pitchDepth: newSmoothedParam(1.5),
		ampDepth:   newSmoothedParam(0.1),
		wet:        newSmoothedParam(1),
	}
	w.allocate(1.5)
	return w
}

func (w *Warble) allocate(depthMs float32) {
	n := int(float64(depthMs)*float64(w.sampleRate)/1000.0)*2 + 4
	if n < 4 {
		n = 4
	}
	w.bufL = make([]float32, n)
	w.bufR = make([]float32, n)
	w.pos = 0
}

func (w *Warble) SetRateHz(v float32)     { w.rateHz.Set(v, w.blockSize) }
func (w *Warble) SetPitchDepthMs(v float32) { w.pitchDepth.Set(v, w.blockSize) }
func (w *Warble) SetAmpDepth(v float32)   { w.ampDepth.Set(clamp(v, 0, 1), w.blockSize) }
func (w *Warble) SetWet(v float32)        { w.wet.Set(clamp(v, 0, 1), w.blockSize) }

func (w *Warble) Process(l, r float32) (float32, float32) {
	if !w.Enabled {
		return l, r
	}
	rateHz := w.rateHz.Next()
	pitchDepth := w.pitchDepth.Next()
	ampDepth := w.ampDepth.Next()
	wet := w.wet.Next()

	depthSamples := float64(pitchDepth) * float64(w.sampleRate) / 1000.0
	wantSize := int(depthSamples)*2 + 4
	if wantSize < 4 {
		wantSize = 4
	}
	if wantSize != len(w.bufL) {
		w.allocate(pitchDepth)
	}

	rate := 2.0 * math.Pi * float64(rateHz) / float64(w.sampleRate)
	mod := float32(math.Sin(w.pitchPhase)) * float32(depthSamples)
	w.pitchPhase += rate
	if w.pitchPhase > 2*math.Pi {
		w.pitchPhase -= 2 * math.Pi
	}
	trem := 1 - ampDepth*float32((math.Sin(w.ampPhase)+1)/2)
	w.ampPhase += rate * 1.3
	if w.ampPhase > 2*math.Pi {
		w.ampPhase -= 2 * math.Pi
	}

	w.bufL[w.pos] = l
	w.bufR[w.pos] = r

	delay := float32(len(w.bufL)/2) + mod
	readPos := float32(w.pos) - delay
	for readPos < 0 {
		readPos += float32(len(w.bufL))
	}
	idx := int(readPos)
	frac := readPos - float32(idx)
	idx2 := idx + 1
	if idx2 >= len(w.bufL) {
		idx2 = 0
	}
	delL := (w.bufL[idx]*(1-frac) + w.bufL[idx2]*frac) * trem
	delR := (w.bufR[idx]*(1-frac) + w.bufR[idx2]*frac) * trem

	w.pos++
	if w.pos >= len(w.bufL) {
		w.pos = 0
	}
	return l*(1-wet) + delL*wet, r*(1-wet) + delR*wet
}

func (w *Warble) Reset() {
	for i := range w.bufL {
		w.bufL[i] = 0
		w.bufR[i] = 0
	}
	w.pos = 0
	w.pitchPhase, w.ampPhase = 0, 0
}

package effects

import "math"

// DaisyDelay and SaturatorDelay both build on the same feedback delay-line
// core (buffer + cross-channel feedback mix) the original Delay used;
// DaisyDelay keeps it clean with an optional tone-damping filter, while
// SaturatorDelay runs the feedback path through tanh saturation for a
// hot-tape repeat character.

// DaisyDelay is a clean stereo delay with cross-feedback and a damping filter
// in the feedback path (spec.md §4.8).
type DaisyDelay struct {
	Base

	sampleRate int
	bufL, bufR []float32
	pos        int

	time     smoothedParam // ms
	feedback smoothedParam // 0..1
	cross    smoothedParam // 0..1
	tone     smoothedParam // 0..1, lowpass amount on the feedback path
	wet      smoothedParam // 0..1

	toneL, toneR float32
}

func NewDaisyDelay(sampleRate int) *DaisyDelay {
	d := &DaisyDelay{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		time:       newSmoothedParam(350),
		feedback:   newSmoothedParam(0.35),
		cross:      newSmoothedParam(0.2),
		tone:       newSmoothedParam(0.5),
		wet:        newSmoothedParam(0.35),
	}
	d.allocate(350)
	return d
}

func (d *DaisyDelay) allocate(ms float32) {
	n := int(float64(ms) * float64(d.sampleRate) / 1000.0)
	if n < 1 {
		n = 1
	}
	d.bufL = make([]float32, n)
	d.bufR = make([]float32, n)
	d.pos = 0
}

func (d *DaisyDelay) SetTimeMs(ms float32)  { d.time.Set(ms, d.blockSize) }
func (d *DaisyDelay) SetFeedback(v float32) { d.feedback.Set(clamp(v, 0, 0.97), d.blockSize) }
func (d *DaisyDelay) SetCross(v float32)    { d.cross.Set(clamp(v, 0, 1), d.blockSize) }
func (d *DaisyDelay) SetTone(v float32)     { d.tone.Set(clamp(v, 0, 1), d.blockSize) }
func (d *DaisyDelay) SetWet(v float32)      { d.wet.Set(clamp(v, 0, 1), d.blockSize) }

func (d *DaisyDelay) Process(l, r float32) (float32, float32) {
	if !d.Enabled {
		return l, r
	}
	ms := d.time.Next()
	fb := d.feedback.Next()
	cross := d.cross.Next()
	tone := d.tone.Next()
	wet := d.wet.Next()

	want := int(float64(ms) * float64(d.sampleRate) / 1000.0)
	if want < 1 {
		want = 1
	}
	if want > len(d.bufL) {
		// Grow with headroom so a rising time ramp does not reallocate (and
		// clear the line) on every sample.
		d.allocate(2 * ms)
	}

	readPos := d.pos - want
	if readPos < 0 {
		readPos += len(d.bufL)
	}
	delL := d.bufL[readPos]
	delR := d.bufR[readPos]

	alpha := 1 - tone*0.9
	d.toneL += alpha * (delL - d.toneL)
	d.toneR += alpha * (delR - d.toneR)

	fbL := d.toneL*fb*(1-cross) + d.toneR*fb*cross
	fbR := d.toneR*fb*(1-cross) + d.toneL*fb*cross
	d.bufL[d.pos] = l + fbL
	d.bufR[d.pos] = r + fbR
	d.pos++
	if d.pos >= len(d.bufL) {
		d.pos = 0
	}
	return l*(1-wet) + delL*wet, r*(1-wet) + delR*wet
}

func (d *DaisyDelay) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.pos = 0
	d.toneL, d.toneR = 0, 0
}

// SaturatorDelay is a feedback delay whose repeats pass through tanh
// saturation each cycle, darkening and compressing successive echoes.
type SaturatorDelay struct {
	Base

	sampleRate int
	bufL, bufR []float32
	pos        int

	time     smoothedParam
	feedback smoothedParam
	drive    smoothedParam // saturation pre-gain, 1..8
	wet      smoothedParam
}

func NewSaturatorDelay(sampleRate int) *SaturatorDelay {
	s := &SaturatorDelay{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		time:       newSmoothedParam(280),
		feedback:   newSmoothedParam(0.45),
		drive:      newSmoothedParam(2.5),
		wet:        newSmoothedParam(0.4),
	}
	s.allocate(280)
	return s
}

func (s *SaturatorDelay) allocate(ms float32) {
	n := int(float64(ms) * float64(s.sampleRate) / 1000.0)
	if n < 1 {
		n = 1
	}
	s.bufL = make([]float32, n)
	s.bufR = make([]float32, n)
	s.pos = 0
}

func (s *SaturatorDelay) SetTimeMs(ms float32)  { s.time.Set(ms, s.blockSize) }
func (s *SaturatorDelay) SetFeedback(v float32) { s.feedback.Set(clamp(v, 0, 0.95), s.blockSize) }
func (s *SaturatorDelay) SetDrive(v float32)    { s.drive.Set(v, s.blockSize) }
func (s *SaturatorDelay) SetWet(v float32)      { s.wet.Set(clamp(v, 0, 1), s.blockSize) }

func (s *SaturatorDelay) Process(l, r float32) (float32, float32) {
	if !s.Enabled {
		return l, r
	}
	ms := s.time.Next()
	fb := s.feedback.Next()
	drive := s.drive.Next()
	wet := s.wet.Next()

	want := int(float64(ms) * float64(s.sampleRate) / 1000.0)
	if want < 1 {
		want = 1
	}
	if want != len(s.bufL) {
		s.allocate(ms)
	}

	delL := s.bufL[s.pos]
	delR := s.bufR[s.pos]

	satL := float32(math.Tanh(float64(delL * drive)))
	satR := float32(math.Tanh(float64(delR * drive)))

	s.bufL[s.pos] = l + satL*fb
	s.bufR[s.pos] = r + satR*fb
	s.pos++
	if s.pos >= len(s.bufL) {
		s.pos = 0
	}
	return l*(1-wet) + delL*wet, r*(1-wet) + delR*wet
}

func (s *SaturatorDelay) Reset() {
	for i := range s.bufL {
		s.bufL[i] = 0
		s.bufR[i] = 0
	}
	s.pos = 0
}

package effects

// Rumsklang and Supervoid both build on the original Reverb's Schroeder
// design (parallel comb filters into cascaded allpasses): Rumsklang exposes
// the room/early-reflection controls of a natural-space reverb, Supervoid
// trades early reflections for a long smeared decay tail with its own
// damping filter.

type combFilter struct {
	buf []float32
	pos int
	fb  float32
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.buf[c.pos] = in + out*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (c *combFilter) reset() {
	for i := range c.buf {
		c.buf[i] = 0
	}
	c.pos = 0
}

type allpassFilter struct {
	buf []float32
	pos int
	fb  float32
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

func (a *allpassFilter) reset() {
	for i := range a.buf {
		a.buf[i] = 0
	}
	a.pos = 0
}

func newCombs(sampleRate int, roomSize, feedback float32) [4]combFilter {
	base := int(float32(sampleRate) * roomSize * 0.05)
	if base < 10 {
		base = 10
	}
	fb := clamp(feedback, 0, 0.97)
	lens := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	var combs [4]combFilter
	for i := range combs {
		combs[i] = combFilter{buf: make([]float32, maxInt(lens[i], 1)), fb: fb}
	}
	return combs
}

func newAllpasses(sampleRate int, roomSize float32) [2]allpassFilter {
	base := int(float32(sampleRate) * roomSize * 0.05)
	if base < 10 {
		base = 10
	}
	lens := [2]int{base * 347 / 1000, base * 213 / 1000}
	var aps [2]allpassFilter
	for i := range aps {
		aps[i] = allpassFilter{buf: make([]float32, maxInt(lens[i], 1)), fb: 0.5}
	}
	return aps
}

// Rumsklang is a natural-room algorithmic reverb: room size, decay, a
// high-cut damping filter on the tail, and a pre-delay.
type Rumsklang struct {
	Base

	sampleRate int
	combs      [4]combFilter
	allpass    [2]allpassFilter
	preBuf     []float32
	prePos     int

	preDelay smoothedParam // ms
	size     smoothedParam // 0..1
	decay    smoothedParam // 0..1 (comb feedback)
	damp     smoothedParam // 0..1, tail lowpass
	wet      smoothedParam

	dampL, dampR float32
}

func NewRumsklang(sampleRate int) *Rumsklang {
	r := &Rumsklang{
		Base:       NewBase(128),
		sampleRate: sampleRate,
		preDelay:   newSmoothedParam(20),
		size:       newSmoothedParam(0.5),
		decay:      newSmoothedParam(0.6),
		damp:       newSmoothedParam(0.3),
		wet:        newSmoothedParam(0.4),
	}
	r.combs = newCombs(sampleRate, 0.5, 0.6)
	r.allpass = newAllpasses(sampleRate, 0.5)
	r.allocatePre(20)
	return r
}

func (r *Rumsklang) allocatePre(ms float32) {
	n := int(float64(ms) * float64(r.sampleRate) / 1000.0)
	if n < 1 {
		n = 1
	}
	r.preBuf = make([]float32, n)
	r.prePos = 0
}

func (r *Rumsklang) SetPreDelayMs(ms float32) { r.preDelay.Set(ms, r.blockSize) }
func (r *Rumsklang) SetSize(v float32)        { r.size.Set(clamp(v, 0, 1), r.blockSize) }
func (r *Rumsklang) SetDecay(v float32)       { r.decay.Set(clamp(v, 0, 0.97), r.blockSize) }
func (r *Rumsklang) SetDamp(v float32)        { r.damp.Set(clamp(v, 0, 1), r.blockSize) }
func (r *Rumsklang) SetWet(v float32)         { r.wet.Set(clamp(v, 0, 1), r.blockSize) }

func (r *Rumsklang) Process(l, r2 float32) (float32, float32) {
	if !r.Enabled {
		return l, r2
	}
	ms := r.preDelay.Next()
	decay := r.decay.Next()
	damp := r.damp.Next()
	wet := r.wet.Next()

	want := int(float64(ms) * float64(r.sampleRate) / 1000.0)
	if want < 1 {
		want = 1
	}
	if want != len(r.preBuf) {
		r.allocatePre(ms)
	}

	mono := (l + r2) * 0.5
	delayed := r.preBuf[r.prePos]
	r.preBuf[r.prePos] = mono
	r.prePos++
	if r.prePos >= len(r.preBuf) {
		r.prePos = 0
	}

	var out float32
	for i := range r.combs {
		r.combs[i].fb = decay
		out += r.combs[i].process(delayed)
	}
	out *= 0.25
	for i := range r.allpass {
		out = r.allpass[i].process(out)
	}

	alpha := 1 - damp*0.9
	r.dampL += alpha * (out - r.dampL)
	r.dampR += alpha * (out - r.dampR)

	return l*(1-wet) + r.dampL*wet, r2*(1-wet) + r.dampR*wet
}

func (r *Rumsklang) Reset() {
	for i := range r.combs {
		r.combs[i].reset()
	}
	for i := range r.allpass {
		r.allpass[i].reset()
	}
	for i := range r.preBuf {
		r.preBuf[i] = 0
	}
	r.prePos = 0
	r.dampL, r.dampR = 0, 0
}

// Supervoid is a long, smeared, denser-than-natural reverb (a "black hole"
// ambience tail) with its own high/low damping pair instead of a pre-delay.
type Supervoid struct {
	Base

	combs   [4]combFilter
	allpass [2]allpassFilter

	decay smoothedParam // 0..1
	hpf   smoothedParam // 0..1, high-pass amount removing mud
	lpf   smoothedParam // 0..1, low-pass amount taming harshness
	wet   smoothedParam

	hpState, lpState float32
}

func NewSupervoid(sampleRate int) *Supervoid {
	s := &Supervoid{
		Base:  NewBase(128),
		decay: newSmoothedParam(0.85),
		hpf:   newSmoothedParam(0.2),
		lpf:   newSmoothedParam(0.6),
		wet:   newSmoothedParam(0.5),
	}
	s.combs = newCombs(sampleRate, 0.9, 0.85)
	s.allpass = newAllpasses(sampleRate, 0.9)
	return s
}

func (s *Supervoid) SetDecay(v float32) { s.decay.Set(clamp(v, 0, 0.98), s.blockSize) }
func (s *Supervoid) SetHPF(v float32)   { s.hpf.Set(clamp(v, 0, 1), s.blockSize) }
func (s *Supervoid) SetLPF(v float32)   { s.lpf.Set(clamp(v, 0, 1), s.blockSize) }
func (s *Supervoid) SetWet(v float32)   { s.wet.Set(clamp(v, 0, 1), s.blockSize) }

func (s *Supervoid) Process(l, r float32) (float32, float32) {
	if !s.Enabled {
		return l, r
	}
	decay := s.decay.Next()
	hpf := s.hpf.Next()
	lpf := s.lpf.Next()
	wet := s.wet.Next()

	mono := (l + r) * 0.5
	var out float32
	for i := range s.combs {
		s.combs[i].fb = decay
		out += s.combs[i].process(mono)
	}
	out *= 0.25
	for i := range s.allpass {
		out = s.allpass[i].process(out)
	}

	s.lpState += (1 - lpf*0.9) * (out - s.lpState)
	filtered := s.lpState
	s.hpState += hpf * 0.3 * (filtered - s.hpState)
	filtered -= s.hpState

	return l*(1-wet) + filtered*wet, r*(1-wet) + filtered*wet
}

func (s *Supervoid) Reset() {
	for i := range s.combs {
		s.combs[i].reset()
	}
	for i := range s.allpass {
		s.allpass[i].reset()
	}
	s.hpState, s.lpState = 0, 0
}

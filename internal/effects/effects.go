// Package effects implements the 18-tag insert-effect catalog of spec.md
// §4.8. Every effect is a fixed-parameter-count (<=8) stereo block
// processor with an enabled flag and per-block parameter smoothing to avoid
// zipper noise; Chain sequences effects the same way the teacher's effect
// chain does.
package effects

// Effector processes stereo audio in-place.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Chain applies a sequence of effects in order.
type Chain struct {
	effects []Effector
}

func NewChain(effects ...Effector) *Chain {
	return &Chain{effects: effects}
}

func (c *Chain) Process(l, r float32) (float32, float32) {
	for _, e := range c.effects {
		l, r = e.Process(l, r)
	}
	return l, r
}

func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
}

func (c *Chain) Add(e Effector) {
	c.effects = append(c.effects, e)
}

// Tag identifies one of the catalog's 18 effect algorithms (spec.md §4.8).
type Tag int

const (
	TagBypass Tag = iota
	TagChronoPitch
	TagCombFilter
	TagCompressor
	TagDaisyDelay
	TagDegrader
	TagDirtshaper
	TagFilterbank
	TagFlanger
	TagLowPass
	TagMultimode
	TagChorus
	TagPhaser
	TagSaturatorDelay
	TagRumsklang
	TagSupervoid
	TagWarble
	TagFreqWarper
)

// Base is embedded by every effect to provide the enabled flag and the
// block size used for parameter-ramp smoothing (spec.md §4.8: "per-block
// parameter smoothing"; a block is <=128 frames per spec.md §4.9).
type Base struct {
	Enabled   bool
	blockSize int
}

// NewBase returns a Base enabled by default with the given smoothing block size.
func NewBase(blockSize int) Base {
	if blockSize < 1 {
		blockSize = 128
	}
	return Base{Enabled: true, blockSize: blockSize}
}

// SetBlockSize reconfigures the smoothing ramp length (samples).
func (b *Base) SetBlockSize(n int) {
	if n < 1 {
		n = 1
	}
	b.blockSize = n
}

// smoothedParam ramps a parameter linearly to a new target over one block,
// so a UI-driven parameter change never jumps discontinuously mid-buffer.
type smoothedParam struct {
	current, target, step float32
	remaining              int
}

func newSmoothedParam(initial float32) smoothedParam {
	return smoothedParam{current: initial, target: initial}
}

// Set schedules a ramp to target over blockSize samples.
func (p *smoothedParam) Set(target float32, blockSize int) {
	if blockSize < 1 {
		blockSize = 1
	}
	p.target = target
	p.step = (target - p.current) / float32(blockSize)
	p.remaining = blockSize
}

// Next advances the ramp by one sample and returns the new current value.
func (p *smoothedParam) Next() float32 {
	if p.remaining > 0 {
		p.current += p.step
		p.remaining--
		if p.remaining == 0 {
			p.current = p.target
		}
	}
	return p.current
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// New constructs the effect for tag at the given sample rate, with
// reasonable defaults for its parameters. Engine/track wiring code calls the
// tag-specific SetXxx methods afterward to apply project settings.
func New(tag Tag, sampleRate int) Effector {
	switch tag {
	case TagChronoPitch:
		return NewChronoPitch(sampleRate)
	case TagCombFilter:
		return NewCombFilter(sampleRate)
	case TagCompressor:
		return NewCompressor(sampleRate)
	case TagDaisyDelay:
		return NewDaisyDelay(sampleRate)
	case TagDegrader:
		return NewDegrader(sampleRate)
	case TagDirtshaper:
		return NewDirtshaper(sampleRate)
	case TagFilterbank:
		return NewFilterbank(sampleRate)
	case TagFlanger:
		return NewFlanger(sampleRate)
	case TagLowPass:
		return NewLowPassFX(sampleRate)
	case TagMultimode:
		return NewMultimodeFX(sampleRate)
	case TagChorus:
		return NewChorus(sampleRate)
	case TagPhaser:
		return NewPhaser(sampleRate)
	case TagSaturatorDelay:
		return NewSaturatorDelay(sampleRate)
	case TagRumsklang:
		return NewRumsklang(sampleRate)
	case TagSupervoid:
		return NewSupervoid(sampleRate)
	case TagWarble:
		return NewWarble(sampleRate)
	case TagFreqWarper:
		return NewFreqWarper(sampleRate)
	default:
		return NewBypass()
	}
}

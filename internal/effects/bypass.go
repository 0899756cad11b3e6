package effects

// Bypass is the null effect: a Slot held on TagBypass passes audio through
// unchanged, which is how an insert slot with no effect chosen yet behaves.
type Bypass struct {
	Base
}

func NewBypass() *Bypass {
	return &Bypass{Base: NewBase(1)}
}

func (b *Bypass) Process(l, r float32) (float32, float32) { return l, r }
func (b *Bypass) Reset()                                   {}

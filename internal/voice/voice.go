package voice

import (
	"github.com/nortledge/strata/internal/envelope"
	"github.com/nortledge/strata/internal/filter"
	"github.com/nortledge/strata/internal/lfo"
	"github.com/nortledge/strata/internal/sampledata"
)

// FilterAlgo selects which of the two per-voice filter algorithms a slot runs.
type FilterAlgo int

const (
	FilterMultimode FilterAlgo = iota
	FilterBaseWidth
)

// FilterSlot holds both filter implementations so switching Algo never
// allocates on the audio thread; only one is exercised at a time.
type FilterSlot struct {
	Algo FilterAlgo

	mm       *filter.Multimode
	bwL, bwR filter.BaseWidth
}

// NewFilterSlot creates a slot defaulting to the multimode algorithm.
func NewFilterSlot(sampleRate, maxWidth float64) *FilterSlot {
	return &FilterSlot{
		Algo: FilterMultimode,
		mm:   filter.NewMultimode(sampleRate),
		bwL:  *filter.NewBaseWidth(sampleRate, maxWidth),
		bwR:  *filter.NewBaseWidth(sampleRate, maxWidth),
	}
}

// ConfigureMultimode sets the multimode filter's parameters; has no effect
// unless Algo == FilterMultimode.
func (f *FilterSlot) ConfigureMultimode(cutoffHz, resonance, morphType, spreadHz float64) {
	f.mm.Configure(cutoffHz, resonance, morphType, spreadHz)
}

// ConfigureBaseWidth sets the base/width filter's parameters; has no effect
// unless Algo == FilterBaseWidth.
func (f *FilterSlot) ConfigureBaseWidth(base, width float64) {
	f.bwL.Configure(base, width)
	f.bwR.Configure(base, width)
}

// ProcessStereo runs the active algorithm for one sample. cutoffModHz is a
// bipolar control-rate modulation value (from the modulation matrix); only
// the multimode algorithm consumes it, per spec.md §4.5.
func (f *FilterSlot) ProcessStereo(l, r, cutoffModHz float64) (float64, float64) {
	switch f.Algo {
	case FilterBaseWidth:
		return f.bwL.Process(l), f.bwR.Process(r)
	default:
		return f.mm.ProcessStereo(l, r, cutoffModHz)
	}
}

// Reset zeros both algorithms' internal state.
func (f *FilterSlot) Reset() {
	f.mm.Reset()
	f.bwL.Reset()
	f.bwR.Reset()
}

// chainStage identifies one of the three processing stages in a voice's
// configurable overdrive/filterA/filterB chain (spec.md §4.5).
type chainStage int

const (
	stageOverdrive chainStage = iota
	stageFilterA
	stageFilterB
)

// ChainOrder is one of the six permutations of overdrive/filterA/filterB.
type ChainOrder [3]chainStage

// AllChainOrders enumerates the six permutations spec.md §4.5 allows.
var AllChainOrders = [6]ChainOrder{
	{stageOverdrive, stageFilterA, stageFilterB},
	{stageOverdrive, stageFilterB, stageFilterA},
	{stageFilterA, stageOverdrive, stageFilterB},
	{stageFilterA, stageFilterB, stageOverdrive},
	{stageFilterB, stageOverdrive, stageFilterA},
	{stageFilterB, stageFilterA, stageOverdrive},
}

// DefaultChainOrder matches the teacher voice chain's historical order.
var DefaultChainOrder = AllChainOrders[0]

// Voice is one polyphonic playback slot: an oscillator reading a sample,
// amplitude and modulation envelopes, two LFOs, a filter pair, overdrive, and
// pan. All fields are touched only by the audio thread.
type Voice struct {
	ID          uint64
	Active      bool
	Note        int
	Velocity    int
	AllocatedAt uint64 // global tick counter at allocation, for steal tie-break

	Osc       Oscillator
	AmpEnv    *envelope.Envelope
	ModEnv    *envelope.Envelope
	LFO1      *lfo.LFO
	LFO2      *lfo.LFO
	FilterA   *FilterSlot
	FilterB   *FilterSlot
	Overdrive filter.Overdrive
	Order     ChainOrder

	Pan float64 // bipolar, -1..1

	velocityGain float64

	BaseSemitones      float64 // tune + key-tracking, fixed for the voice's life
	PitchModSemitones  float64 // written each block by the modulation matrix
	CutoffModA         float64 // Hz, written each block by the modulation matrix
	CutoffModB         float64

	portGlideSemitones float64
	portGlideStep      float64
	portGlideRemaining int

	SampleIdx sampledata.Index
}

// NewVoice constructs an idle voice ready for allocation.
func NewVoice(id uint64, sampleRate, maxFilterWidth float64, lfoSeed1, lfoSeed2 uint64) *Voice {
	return &Voice{
		ID:      id,
		AmpEnv:  envelope.New(sampleRate),
		ModEnv:  envelope.New(sampleRate),
		LFO1:    lfo.NewSeeded(lfoSeed1),
		LFO2:    lfo.NewSeeded(lfoSeed2),
		FilterA: NewFilterSlot(sampleRate, maxFilterWidth),
		FilterB: NewFilterSlot(sampleRate, maxFilterWidth),
		Order:   DefaultChainOrder,
	}
}

// NoteOn (re)starts the voice playing the given sample from scratch.
// semitoneOffset combines the region's root-note/tune/key-tracking math
// (spec.md §4.2); the caller computes it.
func (v *Voice) NoteOn(tick uint64, note, velocity int, store *sampledata.Store, sampleIdx sampledata.Index, semitoneOffset float64, playMode PlayMode, interp Interpolation) {
	v.NoteOnRegion(tick, note, velocity, store, sampleIdx, semitoneOffset, playMode, interp, 0, -1)
}

// NoteOnRegion is NoteOn with an explicit sample-frame playback window
// (the SFZ/region offset/end opcodes, spec.md §6); endFrame -1 means the
// sample's own end.
func (v *Voice) NoteOnRegion(tick uint64, note, velocity int, store *sampledata.Store, sampleIdx sampledata.Index, semitoneOffset float64, playMode PlayMode, interp Interpolation, startFrame, endFrame int) {
	v.Active = true
	v.Note = note
	v.Velocity = velocity
	v.AllocatedAt = tick
	v.velocityGain = VelocityGain(velocity)
	v.BaseSemitones = semitoneOffset
	v.PitchModSemitones = 0
	v.SampleIdx = sampleIdx
	v.Osc.PlayMode = playMode
	v.Osc.Interp = interp
	v.Osc.StartFrame = startFrame
	v.Osc.EndFrame = endFrame
	sample, _ := store.Get(sampleIdx)
	v.Osc.Reset(sample)
	v.AmpEnv.NoteOn()
	v.ModEnv.NoteOn()
	v.LFO1.Trigger()
	v.LFO2.Trigger()
}

// Retrigger restarts playback in place without reassigning voice identity,
// used by reuse_voices and legato mono retriggers (spec.md §4.6).
func (v *Voice) Retrigger(tick uint64, note, velocity int, store *sampledata.Store, sampleIdx sampledata.Index, semitoneOffset float64) {
	v.RetriggerRegion(tick, note, velocity, store, sampleIdx, semitoneOffset, 0, -1)
}

// RetriggerRegion is Retrigger with an explicit sample-frame playback window.
func (v *Voice) RetriggerRegion(tick uint64, note, velocity int, store *sampledata.Store, sampleIdx sampledata.Index, semitoneOffset float64, startFrame, endFrame int) {
	v.Note = note
	v.Velocity = velocity
	v.AllocatedAt = tick
	v.velocityGain = VelocityGain(velocity)
	v.BaseSemitones = semitoneOffset
	v.SampleIdx = sampleIdx
	v.Osc.StartFrame = startFrame
	v.Osc.EndFrame = endFrame
	sample, _ := store.Get(sampleIdx)
	v.Osc.Reset(sample)
	v.AmpEnv.NoteOn()
	v.ModEnv.NoteOn()
	v.LFO1.Trigger()
	v.LFO2.Trigger()
}

// Glide starts a portamento pitch glide from fromSemitones to the voice's
// current BaseSemitones over glideSeconds (spec.md §4.6, linear glide).
func (v *Voice) Glide(fromSemitones, glideSeconds, sampleRate float64) {
	if glideSeconds <= 0 {
		v.portGlideSemitones = 0
		v.portGlideRemaining = 0
		return
	}
	v.portGlideSemitones = fromSemitones - v.BaseSemitones
	v.portGlideRemaining = int(glideSeconds * sampleRate)
	if v.portGlideRemaining <= 0 {
		v.portGlideSemitones = 0
		return
	}
	v.portGlideStep = v.portGlideSemitones / float64(v.portGlideRemaining)
}

// NoteOff releases the voice's envelopes; it keeps sounding until they decay.
func (v *Voice) NoteOff() {
	v.AmpEnv.NoteOff()
	v.ModEnv.NoteOff()
}

// Kill immediately silences the voice (NaN guard, hard voice steal).
func (v *Voice) Kill() {
	v.Active = false
	v.AmpEnv.SetParams(envelope.Params{})
	v.FilterA.Reset()
	v.FilterB.Reset()
}

// Level returns the amplitude envelope's current output, used by the voice
// pool to pick a steal candidate.
func (v *Voice) Level() float64 {
	if !v.Active {
		return -1
	}
	return v.AmpEnv.Level()
}

// Process advances the voice by one audio sample and returns its stereo
// output. store resolves the oscillator's sample by the index last set via
// NoteOn/Retrigger, so a concurrent store swap (new samples appended by the
// control context) is always observed on the next sample.
func (v *Voice) Process(store *sampledata.Store) (float32, float32) {
	if !v.Active {
		return 0, 0
	}
	sample, _ := store.Get(v.SampleIdx)

	ampLevel := v.AmpEnv.Advance()
	v.ModEnv.Advance()

	if v.portGlideRemaining > 0 {
		v.portGlideSemitones -= v.portGlideStep
		v.portGlideRemaining--
		if v.portGlideRemaining == 0 {
			v.portGlideSemitones = 0
		}
	}

	ratio := PitchRatio(v.BaseSemitones + v.PitchModSemitones + v.portGlideSemitones)
	ol, or, finished := v.Osc.Next(sample, ratio)

	if finished && v.AmpEnv.State() != envelope.StateRelease {
		// Sample ended (one-shot) or the OFF slot: release early rather than
		// looping silence forever (spec.md §4.2 failure mode). Releasing only
		// once lets the release run out to Idle.
		v.AmpEnv.NoteOff()
	}

	gain := ampLevel * v.velocityGain
	l64, r64 := float64(ol)*gain, float64(or)*gain
	l64, r64 = v.applyChain(l64, r64)
	l64, r64 = v.applyPan(l64, r64)

	if v.AmpEnv.Idle() {
		v.Active = false
	}

	return float32(l64), float32(r64)
}

func (v *Voice) applyChain(l, r float64) (float64, float64) {
	for _, st := range v.Order {
		switch st {
		case stageOverdrive:
			l, r = v.Overdrive.Process(l), v.Overdrive.Process(r)
		case stageFilterA:
			l, r = v.FilterA.ProcessStereo(l, r, v.CutoffModA)
		case stageFilterB:
			l, r = v.FilterB.ProcessStereo(l, r, v.CutoffModB)
		}
	}
	return l, r
}

func (v *Voice) applyPan(l, r float64) (float64, float64) {
	p := v.Pan
	if p < -1 {
		p = -1
	}
	if p > 1 {
		p = 1
	}
	// Linear pan law: centered (p=0) leaves both channels at unity.
	leftGain := 1.0
	rightGain := 1.0
	if p > 0 {
		leftGain = 1 - p
	} else if p < 0 {
		rightGain = 1 + p
	}
	return l * leftGain, r * rightGain
}

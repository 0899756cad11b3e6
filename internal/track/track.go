// Package track implements the 16-track aggregate of spec.md §3/§4.7:
// Audio[1..8], Bus[9..12], Send[13..15], and the terminal Mix[16] track,
// each owning its own insert FX chain, routing destination, and send
// levels. Audio tracks additionally own a machine and a voice pool wired
// through the overdrive/filter/amp signal path.
package track

import (
	"fmt"

	"github.com/nortledge/strata/internal/effects"
	"github.com/nortledge/strata/internal/lfo"
	"github.com/nortledge/strata/internal/machine"
	"github.com/nortledge/strata/internal/modmatrix"
	"github.com/nortledge/strata/internal/sampledata"
	"github.com/nortledge/strata/internal/voice"
)

// Kind identifies a track's position in the 16-track layout.
type Kind int

const (
	KindAudio Kind = iota
	KindBus
	KindSend
	KindMix
)

// Count is the fixed number of tracks a project always has.
const Count = 16

const (
	AudioTrackCount = 8
	BusTrackCount   = 4
	SendTrackCount  = 3
)

// Route is a track's routing destination (spec.md §4.7).
type Route int

const (
	RouteMix Route = iota
	RouteOutCD
	RouteOutEF
	RouteBus1
	RouteBus2
	RouteBus3
	RouteBus4
)

// InsertSlot is one FX insert: the chosen effect (with Bypass meaning
// "empty"), wrapped so the track can swap it without touching the chain.
type InsertSlot struct {
	Tag    effects.Tag
	Effect effects.Effector
}

func newInsertSlot(sampleRate int) InsertSlot {
	return InsertSlot{Tag: effects.TagBypass, Effect: effects.NewBypass()}
}

// SetTag replaces the slot's effect, discarding the previous one's state.
func (s *InsertSlot) SetTag(tag effects.Tag, sampleRate int) {
	s.Tag = tag
	s.Effect = effects.New(tag, sampleRate)
}

func (s *InsertSlot) process(l, r float32) (float32, float32) {
	if s.Effect == nil {
		return l, r
	}
	return s.Effect.Process(l, r)
}

// Sends holds the three bipolar send amounts to the A/B/C send buses.
type Sends struct {
	A, B, C float64 // [-1, 1]
}

// Track is one of the 16 fixed tracks.
type Track struct {
	Index int
	Kind  Kind

	// Audio tracks only.
	Machine   *machine.Machine
	Pool *voice.Pool

	// Audio and Bus tracks: two insert slots. Send tracks and Mix: one.
	Insert1 InsertSlot
	Insert2 InsertSlot

	Route Route
	Sends Sends

	Mute, Solo bool
	Level      float64 // linear gain
	Pan        float64 // -1..1

	// Mod is this track's modulation matrix (spec.md §4.9): routes from the
	// track's two FX LFOs, and from each active voice's own LFOs/mod
	// envelope, onto voice and FX/routing destinations. Never nil.
	Mod        *modmatrix.Matrix
	ModSources modmatrix.TrackSources

	sampleRate int
}

func newModMatrix(index int) (*modmatrix.Matrix, modmatrix.TrackSources) {
	return modmatrix.NewMatrix(), modmatrix.TrackSources{
		FXLFO1: lfo.NewSeeded(uint64(index*2 + 1001)),
		FXLFO2: lfo.NewSeeded(uint64(index*2 + 1002)),
	}
}

// NewAudioTrack creates an Audio[1..8] track bound to m/pool.
func NewAudioTrack(index int, sampleRate int, m *machine.Machine, pool *voice.Pool) *Track {
	mod, sources := newModMatrix(index)
	return &Track{
		Index: index, Kind: KindAudio, Machine: m, Pool: pool,
		Route: RouteMix, Level: 1,
		Insert1: newInsertSlot(sampleRate), Insert2: newInsertSlot(sampleRate),
		Mod: mod, ModSources: sources,
		sampleRate: sampleRate,
	}
}

// NewBusTrack creates a Bus[9..12] track. Buses re-apply their own insert
// chain and may only route to {Mix, OutC/D, OutE/F} — never to another bus.
func NewBusTrack(index int, sampleRate int) *Track {
	mod, sources := newModMatrix(index)
	return &Track{
		Index: index, Kind: KindBus, Route: RouteMix, Level: 1,
		Insert1: newInsertSlot(sampleRate), Insert2: newInsertSlot(sampleRate),
		Mod: mod, ModSources: sources,
		sampleRate: sampleRate,
	}
}

// NewSendTrack creates a Send[13..15] track, which carries a single FX slot.
func NewSendTrack(index int, sampleRate int) *Track {
	mod, sources := newModMatrix(index)
	return &Track{
		Index: index, Kind: KindSend, Route: RouteMix, Level: 1,
		Insert1:    newInsertSlot(sampleRate),
		Mod:        mod,
		ModSources: sources,
		sampleRate: sampleRate,
	}
}

// NewMixTrack creates the terminal Mix[16] track: one FX slot post-sum,
// feeding the physical outputs.
func NewMixTrack(sampleRate int) *Track {
	mod, sources := newModMatrix(15)
	return &Track{
		Index: 15, Kind: KindMix, Level: 1,
		Insert1:    newInsertSlot(sampleRate),
		Mod:        mod,
		ModSources: sources,
		sampleRate: sampleRate,
	}
}

// ValidateRoute rejects a bus routing to another bus (spec.md §4.7: "no
// recursion to other buses") and any route the track's kind cannot take.
func (t *Track) ValidateRoute(route Route) error {
	isBusRoute := route == RouteBus1 || route == RouteBus2 || route == RouteBus3 || route == RouteBus4
	if t.Kind == KindBus && isBusRoute {
		return fmt.Errorf("track %d: bus tracks cannot route to another bus", t.Index)
	}
	if t.Kind == KindMix {
		return fmt.Errorf("track %d: the mix track has no onward routing", t.Index)
	}
	return nil
}

// SetRoute validates and applies a new routing destination.
func (t *Track) SetRoute(route Route) error {
	if err := t.ValidateRoute(route); err != nil {
		return err
	}
	t.Route = route
	return nil
}

// SetInsert1 swaps the first FX slot's effect.
func (t *Track) SetInsert1(tag effects.Tag) { t.Insert1.SetTag(tag, t.sampleRate) }

// SetInsert2 swaps the second FX slot's effect. No-op on Send/Mix tracks,
// which carry only one slot.
func (t *Track) SetInsert2(tag effects.Tag) {
	if t.Kind == KindSend || t.Kind == KindMix {
		return
	}
	t.Insert2.SetTag(tag, t.sampleRate)
}

// Process renders one sample of this track's own signal chain:
// machine -> overdrive/filter_A/filter_B (inside Voice.Process, per the
// chain order each voice carries) -> amp_env (already folded into Voice
// output) -> insert_fx_1 -> insert_fx_2. Bus/Send/Mix tracks have no voice
// pool and instead receive their input pre-mixed by the engine.
func (t *Track) Process(store *sampledata.Store, inL, inR float32) (float32, float32) {
	l, r := inL, inR
	if t.Kind == KindAudio && t.Pool != nil {
		vl, vr := t.Pool.Process(store)
		l, r = vl, vr
	}
	if t.Mute {
		return 0, 0
	}
	l, r = t.Insert1.process(l, r)
	if t.Kind != KindSend && t.Kind != KindMix {
		l, r = t.Insert2.process(l, r)
	}
	l, r = applyPan(l, r, t.Pan)
	gain := float32(t.Level)
	return l * gain, r * gain
}

// ApplyModulation samples this track's two FX LFOs and, for each active
// voice in its pool, that voice's own LFOs/mod envelope, then writes the
// routed results (spec.md §4.9) into the voices and into any FX/routing
// ParamRef the matrix targets. Called once per audio block — control rate,
// not sample rate, per spec.md §5's "modulation at block rate".
func (t *Track) ApplyModulation(stepDurationSec, tickSteps float64) {
	if t.Mod == nil {
		return
	}
	t.ModSources.Sample(stepDurationSec, tickSteps)
	if t.Pool != nil {
		for _, v := range t.Pool.Voices {
			if !v.Active {
				continue
			}
			vs := modmatrix.SampleVoiceSources(v, stepDurationSec, tickSteps)
			t.Mod.ApplyToVoice(v, vs, &t.ModSources)
		}
	}
	t.Mod.ApplyParamRefs(&t.ModSources)
}

// ParamID names the per-track scalars a sequencer step's parameter lock
// (spec.md §4.10) can address directly; step locks bypass the modulation
// matrix and write the track field for the duration of the step.
type ParamID int

const (
	ParamLevel ParamID = iota
	ParamPan
	ParamSendA
	ParamSendB
	ParamSendC
)

// SetParam applies a step's parameter-lock value to one of this track's
// directly-addressable scalars.
func (t *Track) SetParam(id ParamID, value float64) {
	switch id {
	case ParamLevel:
		t.Level = value
	case ParamPan:
		t.Pan = value
	case ParamSendA:
		t.Sends.A = value
	case ParamSendB:
		t.Sends.B = value
	case ParamSendC:
		t.Sends.C = value
	}
}

func applyPan(l, r float32, pan float64) (float32, float32) {
	if pan == 0 {
		return l, r
	}
	p := pan
	if p < -1 {
		p = -1
	}
	if p > 1 {
		p = 1
	}
	leftGain := float32(1 - max(0, p))
	rightGain := float32(1 - max(0, -p))
	return l * leftGain, r * rightGain
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

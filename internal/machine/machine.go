// Package machine implements the per-track sound-source tagged variant of
// spec.md §3/§4: SinglePlayer, MultiPlayer, Subtracks, and MidiOut. The tag
// dictates how a note-on resolves to a sample/pitch and which voice pool (if
// any) plays it; the machine owns the per-track parameters that drive that
// resolution.
package machine

import (
	"github.com/nortledge/strata/internal/instrument"
	"github.com/nortledge/strata/internal/midi"
	"github.com/nortledge/strata/internal/sampledata"
	"github.com/nortledge/strata/internal/voice"
)

// Kind selects the machine's note-resolution behavior.
type Kind int

const (
	KindSinglePlayer Kind = iota
	KindMultiPlayer
	KindSubtracks
	KindMidiOut
)

// SubtrackCount is the fixed number of sub-generators a Subtracks machine owns.
const SubtrackCount = 8

// Subtrack is one of a Subtracks machine's 8 independent single-sample
// generators, addressed by note-number modulo SubtrackCount.
type Subtrack struct {
	Sample    sampledata.Index
	RootNote  int
	TuneCents int
	PlayMode  voice.PlayMode
	Interp    voice.Interpolation
}

// Result reports what a note event produced: a local voice, an outgoing MIDI
// message, or neither (e.g. no SFZ region matched).
type Result struct {
	Voice *voice.Voice
	MIDI  []byte
}

// Machine is one track's sound source.
type Machine struct {
	Kind Kind
	Pool *voice.Pool // nil for KindMidiOut

	// KindSinglePlayer
	Sample    sampledata.Index
	RootNote  int
	TuneCents int
	PlayMode  voice.PlayMode
	Interp    voice.Interpolation

	// KindMultiPlayer
	Instrument *instrument.Instrument

	// KindSubtracks
	Subtracks [SubtrackCount]Subtrack

	// KindMidiOut
	MidiChannel int
}

// NewSinglePlayer creates a machine that plays one sample across the keyboard.
func NewSinglePlayer(pool *voice.Pool, sample sampledata.Index, rootNote, tuneCents int, playMode voice.PlayMode, interp voice.Interpolation) *Machine {
	return &Machine{Kind: KindSinglePlayer, Pool: pool, Sample: sample, RootNote: rootNote, TuneCents: tuneCents, PlayMode: playMode, Interp: interp}
}

// NewMultiPlayer creates a machine that resolves notes through an
// instrument's (note, velocity, round-robin) region map.
func NewMultiPlayer(pool *voice.Pool, inst *instrument.Instrument) *Machine {
	return &Machine{Kind: KindMultiPlayer, Pool: pool, Instrument: inst}
}

// NewSubtracks creates a machine with 8 independently configurable
// single-sample sub-generators, selected by note-number modulo 8.
func NewSubtracks(pool *voice.Pool) *Machine {
	return &Machine{Kind: KindSubtracks, Pool: pool}
}

// NewMidiOut creates a machine that forwards note events to an external MIDI
// channel instead of sounding a local voice.
func NewMidiOut(channel int) *Machine {
	return &Machine{Kind: KindMidiOut, MidiChannel: channel}
}

// NoteOn resolves and sounds (or forwards) a note. rnd is a [0,1) draw used
// by MultiPlayer's round-robin/random-layer selection.
func (m *Machine) NoteOn(note, velocity int, store *sampledata.Store, rnd float64) Result {
	switch m.Kind {
	case KindSinglePlayer:
		semitones := float64(note-m.RootNote) + float64(m.TuneCents)/100.0
		return Result{Voice: m.Pool.NoteOn(note, velocity, store, m.Sample, semitones, m.PlayMode, m.Interp)}

	case KindMultiPlayer:
		if m.Instrument == nil {
			return Result{}
		}
		region := m.Instrument.Select(note, velocity, rnd)
		if region == nil {
			return Result{}
		}
		semitones := regionSemitones(region, note)
		playMode := playModeForLoop(region.LoopMode)
		return Result{Voice: m.Pool.NoteOnRegion(note, velocity, store, region.Sample, semitones, playMode, voice.InterpHermite, region.Offset, region.End)}

	case KindSubtracks:
		st := &m.Subtracks[subtrackIndex(note)]
		semitones := float64(note-st.RootNote) + float64(st.TuneCents)/100.0
		return Result{Voice: m.Pool.NoteOn(note, velocity, store, st.Sample, semitones, st.PlayMode, st.Interp)}

	case KindMidiOut:
		return Result{MIDI: midi.EncodeNoteOn(m.MidiChannel, note, velocity)}
	}
	return Result{}
}

// NoteOff releases the voice(s) for note. In Mono/MonoLegato pool modes, a
// note-off on the top of the held-note stack re-resolves and re-triggers the
// next held note at its original velocity (spec.md §4.6).
func (m *Machine) NoteOff(note int, store *sampledata.Store, rnd float64) Result {
	if m.Kind == KindMidiOut {
		return Result{MIDI: midi.EncodeNoteOff(m.MidiChannel, note)}
	}
	if m.Pool == nil {
		return Result{}
	}
	nextNote, nextVel, hasNext := m.Pool.NoteOff(note)
	if !hasNext {
		return Result{}
	}
	return m.NoteOn(nextNote, nextVel, store, rnd)
}

func regionSemitones(r *instrument.Region, note int) float64 {
	return float64(note-r.RootNote) + float64(r.TuneCents)/100.0 +
		float64(r.NoteOffset) + float64(r.OctaveOffset*12)
}

func playModeForLoop(mode instrument.LoopMode) voice.PlayMode {
	switch mode {
	case instrument.LoopContinuous, instrument.LoopSustain:
		return voice.PlayFwdLoop
	default:
		return voice.PlayFwdOneShot
	}
}

func subtrackIndex(note int) int {
	idx := note % SubtrackCount
	if idx < 0 {
		idx += SubtrackCount
	}
	return idx
}

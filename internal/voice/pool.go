package voice

import "github.com/nortledge/strata/internal/sampledata"

// PolyMode selects how a track's voices respond to overlapping notes
// (spec.md §4.6).
type PolyMode int

const (
	// PolyPoly gives every note-on its own voice, stealing when exhausted.
	PolyPoly PolyMode = iota
	// PolyMonoLFO is polyphonic like PolyPoly, but every voice shares one
	// LFO phase (handled by the track driving all voices' LFO1/LFO2 from a
	// single source rather than per-voice retriggering); the pool treats it
	// identically to PolyPoly for allocation purposes.
	PolyMonoLFO
	// PolyMono plays one voice at a time; a new note-on always retriggers
	// its envelopes.
	PolyMono
	// PolyMonoLegato plays one voice at a time; a note-on while another note
	// is already held glides pitch instead of retriggering envelopes.
	PolyMonoLegato
)

// Pool is a fixed set of voices shared by one track, implementing spec.md
// §4.6's allocation and stealing rules.
type Pool struct {
	Voices []*Voice
	Mode   PolyMode

	// ReuseVoices: a note-on for a note already sounding reuses that voice
	// (retriggering it) instead of allocating a new one.
	ReuseVoices bool

	PortamentoSeconds    float64
	PortamentoLegatoOnly bool

	sampleRate float64
	tick       uint64
	heldNotes  []heldNote
}

// heldNote is a (note, velocity) pair on the mono held-note stack, so
// returning to a previously-held note after a note-off restores its
// original velocity rather than guessing one.
type heldNote struct {
	note     int
	velocity int
}

// NewPool creates a pool of n voices.
func NewPool(n int, sampleRate, maxFilterWidth float64) *Pool {
	voices := make([]*Voice, n)
	for i := range voices {
		voices[i] = NewVoice(uint64(i), sampleRate, maxFilterWidth, uint64(i*2+1), uint64(i*2+2))
	}
	return &Pool{Voices: voices, sampleRate: sampleRate}
}

// NoteOn allocates (or retriggers/glides) a voice for the given note and
// returns it.
func (p *Pool) NoteOn(note, velocity int, store *sampledata.Store, sampleIdx sampledata.Index, semitoneOffset float64, playMode PlayMode, interp Interpolation) *Voice {
	return p.NoteOnRegion(note, velocity, store, sampleIdx, semitoneOffset, playMode, interp, 0, -1)
}

// NoteOnRegion is NoteOn with an explicit sample-frame playback window (the
// SFZ/region offset/end opcodes, spec.md §6).
func (p *Pool) NoteOnRegion(note, velocity int, store *sampledata.Store, sampleIdx sampledata.Index, semitoneOffset float64, playMode PlayMode, interp Interpolation, startFrame, endFrame int) *Voice {
	p.tick++
	// A re-triggered held note (see NoteOff) moves to the top instead of
	// being stacked twice.
	for i, h := range p.heldNotes {
		if h.note == note {
			p.heldNotes = append(p.heldNotes[:i], p.heldNotes[i+1:]...)
			break
		}
	}
	p.heldNotes = append(p.heldNotes, heldNote{note, velocity})

	if p.Mode == PolyMono || p.Mode == PolyMonoLegato {
		v := p.Voices[0]
		wasActive := v.Active
		prevSemitones := v.BaseSemitones
		if p.Mode == PolyMonoLegato && wasActive {
			v.RetriggerRegion(p.tick, note, velocity, store, sampleIdx, semitoneOffset, startFrame, endFrame)
		} else {
			v.NoteOnRegion(p.tick, note, velocity, store, sampleIdx, semitoneOffset, playMode, interp, startFrame, endFrame)
		}
		if p.PortamentoSeconds > 0 && wasActive && (!p.PortamentoLegatoOnly || p.Mode == PolyMonoLegato) {
			v.Glide(prevSemitones, p.PortamentoSeconds, p.sampleRate)
		}
		return v
	}

	if p.ReuseVoices {
		for _, v := range p.Voices {
			if v.Active && v.Note == note {
				v.RetriggerRegion(p.tick, note, velocity, store, sampleIdx, semitoneOffset, startFrame, endFrame)
				return v
			}
		}
	}

	for _, v := range p.Voices {
		if !v.Active {
			v.NoteOnRegion(p.tick, note, velocity, store, sampleIdx, semitoneOffset, playMode, interp, startFrame, endFrame)
			return v
		}
	}

	steal := p.Voices[0]
	for _, v := range p.Voices[1:] {
		if v.Level() < steal.Level() || (v.Level() == steal.Level() && v.AllocatedAt < steal.AllocatedAt) {
			steal = v
		}
	}
	steal.NoteOnRegion(p.tick, note, velocity, store, sampleIdx, semitoneOffset, playMode, interp, startFrame, endFrame)
	return steal
}

// NoteOff releases voices playing note. For the mono modes it returns the
// next (note, velocity) on the held-note stack, if any, which the caller
// should re-trigger via NoteOn with that note's own instrument mapping — the
// pool has no instrument/pitch-mapping knowledge of its own.
func (p *Pool) NoteOff(note int) (nextNote, nextVelocity int, hasNext bool) {
	for i := len(p.heldNotes) - 1; i >= 0; i-- {
		if p.heldNotes[i].note == note {
			p.heldNotes = append(p.heldNotes[:i], p.heldNotes[i+1:]...)
			break
		}
	}

	if p.Mode == PolyMono || p.Mode == PolyMonoLegato {
		if len(p.heldNotes) > 0 {
			h := p.heldNotes[len(p.heldNotes)-1]
			return h.note, h.velocity, true
		}
		p.Voices[0].NoteOff()
		return 0, 0, false
	}

	for _, v := range p.Voices {
		if v.Active && v.Note == note {
			v.NoteOff()
		}
	}
	return 0, 0, false
}

// AllNotesOff releases every active voice immediately (used by panic/reset
// and project load).
func (p *Pool) AllNotesOff() {
	p.heldNotes = p.heldNotes[:0]
	for _, v := range p.Voices {
		v.NoteOff()
	}
}

// Kill forces every voice silent immediately (NaN guard).
func (p *Pool) Kill() {
	p.heldNotes = p.heldNotes[:0]
	for _, v := range p.Voices {
		v.Kill()
	}
}

// Process sums every active voice's output for one sample.
func (p *Pool) Process(store *sampledata.Store) (float32, float32) {
	var l, r float32
	for _, v := range p.Voices {
		vl, vr := v.Process(store)
		l += vl
		r += vr
	}
	return l, r
}

// ActiveCount reports how many voices are currently sounding.
func (p *Pool) ActiveCount() int {
	n := 0
	for _, v := range p.Voices {
		if v.Active {
			n++
		}
	}
	return n
}

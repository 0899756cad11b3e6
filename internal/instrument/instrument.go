// Package instrument implements the (note, velocity layer) -> (sample, tune,
// loop) mapping used by the multi-sample and subtracks machines (spec.md §3).
package instrument

import "github.com/nortledge/strata/internal/sampledata"

// Region maps a note/velocity range to a sample with tuning and loop overrides.
type Region struct {
	LoKey, HiKey   int
	LoVel, HiVel   int
	LoRand, HiRand float64 // [0,1], for round-robin/random-layer selection
	SeqLength      int     // round-robin group size, 0 = disabled
	SeqPosition    int     // 1-based position within the round-robin group
	Sample         sampledata.Index
	RootNote       int
	TuneCents      int
	Offset         int // sample start offset in frames
	End            int // -1 = sample end
	LoopStart      int // -1 = use sample's own loop metadata
	LoopEnd        int
	LoopMode       LoopMode
	LoopCrossfade  int // frames
	NoteOffset     int
	OctaveOffset   int
}

// LoopMode mirrors the SFZ loop_mode opcode subset spec.md §6 requires.
type LoopMode int

const (
	LoopNone LoopMode = iota
	LoopContinuous
	LoopSustain
	LoopOneShot
)

// Instrument is an immutable ordered set of regions, plus a round-robin
// sequence counter per (note) used when regions share a seq_length group.
type Instrument struct {
	Name    string
	Regions []Region

	seqCounters map[int]int
}

// NewInstrument creates an instrument from a slice of regions.
func NewInstrument(name string, regions []Region) *Instrument {
	return &Instrument{Name: name, Regions: regions, seqCounters: map[int]int{}}
}

// Select returns the region that should sound for the given note, velocity
// (0-127), and a [0,1) random draw used for lorand/hirand and round-robin.
// Returns nil if no region matches.
func (in *Instrument) Select(note, velocity int, rnd float64) *Region {
	var candidates []*Region
	for i := range in.Regions {
		r := &in.Regions[i]
		if note < r.LoKey || note > r.HiKey {
			continue
		}
		if velocity < r.LoVel || velocity > r.HiVel {
			continue
		}
		if r.HiRand > 0 && (rnd < r.LoRand || rnd >= r.HiRand) {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return nil
	}
	// Round-robin: among candidates sharing a seq group, advance a per-note counter.
	if candidates[0].SeqLength > 1 {
		if in.seqCounters == nil {
			in.seqCounters = map[int]int{}
		}
		count := in.seqCounters[note]
		pos := count%candidates[0].SeqLength + 1
		in.seqCounters[note] = count + 1
		for _, c := range candidates {
			if c.SeqPosition == pos {
				return c
			}
		}
	}
	return candidates[0]
}

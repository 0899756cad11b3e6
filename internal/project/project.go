// Package project implements spec.md §6's project aggregate and on-disk
// layout: a directory of samples/instruments/presets/projects, a project
// file holding all 128 patterns and 16 songs plus MIDI configuration, and
// samples referenced by relative path rather than embedded.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nortledge/strata/internal/audioio"
	"github.com/nortledge/strata/internal/instrument"
	"github.com/nortledge/strata/internal/sampledata"
	"github.com/nortledge/strata/internal/sequencer"
)

// Directory layout, relative to a project root.
const (
	DirSamples     = "samples"
	DirInstruments = "instruments"
	DirPresets     = "presets"
	DirProjects    = "projects"
)

// SampleRef binds a loaded sample's store index to the relative path it was
// loaded from, so a save/reload cycle doesn't need to re-embed PCM data.
type SampleRef struct {
	Index sampledata.Index
	Path  string // relative to DirSamples
}

// MIDIConfig is the project-wide MIDI routing configuration (spec.md §6):
// 16 per-track assignable CCs plus standard CC/pitchbend/aftertouch/
// breath destinations.
type MIDIConfig struct {
	TrackCCs      [16]int       // CC number assigned to each track, 0 = unassigned
	PitchBendDest string
	AftertouchDest string
	ModWheelDest  string
	BreathDest    string
}

// Project is everything one project file persists.
type Project struct {
	Name        string
	Samples     []SampleRef
	Instruments map[string]*instrument.Instrument
	Patterns    [sequencer.PatternCount]*sequencer.Pattern
	Songs       [sequencer.SongCount]*sequencer.Song
	Chains      []*sequencer.Chain
	MIDI        MIDIConfig
}

// New creates an empty project with all 128 patterns allocated.
func New(name string) *Project {
	p := &Project{Name: name, Instruments: map[string]*instrument.Instrument{}}
	for i := range p.Patterns {
		p.Patterns[i] = sequencer.NewPattern()
	}
	for i := range p.Songs {
		p.Songs[i] = &sequencer.Song{}
	}
	return p
}

// projectFile is the on-disk JSON shape; Instrument/Pattern/Song types are
// plain data already, so they round-trip through encoding/json directly.
type projectFile struct {
	Name        string
	Samples     []SampleRef
	Instruments map[string]*instrument.Instrument
	Patterns    [sequencer.PatternCount]*sequencer.Pattern
	Songs       [sequencer.SongCount]*sequencer.Song
	Chains      []*sequencer.Chain
	MIDI        MIDIConfig
}

// Save writes the project file and ensures the directory layout exists
// under root.
func Save(root string, p *Project) error {
	for _, dir := range []string{DirSamples, DirInstruments, DirPresets, DirProjects} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return fmt.Errorf("project: create %s: %w", dir, err)
		}
	}
	pf := projectFile{
		Name: p.Name, Samples: p.Samples, Instruments: p.Instruments,
		Patterns: p.Patterns, Songs: p.Songs, Chains: p.Chains, MIDI: p.MIDI,
	}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("project: marshal: %w", err)
	}
	path := filepath.Join(root, DirProjects, p.Name+".json")
	return os.WriteFile(path, data, 0o644)
}

// Load reads a project file by name from root/projects and its referenced
// samples from root/samples, decoding and registering each into store.
func Load(root, name string, store *sampledata.Store) (*Project, error) {
	path := filepath.Join(root, DirProjects, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}
	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("project: unmarshal: %w", err)
	}
	p := &Project{
		Name: pf.Name, Samples: pf.Samples, Instruments: pf.Instruments,
		Patterns: pf.Patterns, Songs: pf.Songs, Chains: pf.Chains, MIDI: pf.MIDI,
	}
	if p.Instruments == nil {
		p.Instruments = map[string]*instrument.Instrument{}
	}
	for i := range p.Patterns {
		if p.Patterns[i] == nil {
			p.Patterns[i] = sequencer.NewPattern()
		}
	}
	for i := range p.Songs {
		if p.Songs[i] == nil {
			p.Songs[i] = &sequencer.Song{}
		}
	}

	for _, ref := range p.Samples {
		if err := loadSampleInto(root, ref, store); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func loadSampleInto(root string, ref SampleRef, store *sampledata.Store) error {
	full := filepath.Join(root, DirSamples, ref.Path)
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("project: read sample %s: %w", ref.Path, err)
	}

	var decoded *audioio.Decoded
	switch strings.ToLower(filepath.Ext(ref.Path)) {
	case ".aiff", ".aif":
		decoded, err = audioio.DecodeAIFF(data)
	default:
		decoded, err = audioio.DecodeWAV(data)
	}
	if err != nil {
		return fmt.Errorf("project: decode sample %s: %w", ref.Path, err)
	}

	_, _, err = store.Load(ref.Path, decoded.SampleRate, decoded.Channels, decoded.Frames, decoded.LoopStart, decoded.LoopEnd)
	if err != nil {
		return fmt.Errorf("project: load sample %s: %w", ref.Path, err)
	}
	return nil
}

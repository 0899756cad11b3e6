// Package sampledata owns decoded PCM sample buffers for a project. Samples
// are immutable once loaded; voices reference them by a stable Index rather
// than by pointer, so a store reload never invalidates an in-flight voice
// (spec.md §3, §9).
package sampledata

import (
	"errors"
	"math"
)

// Index identifies a sample slot. Index 0 is always the reserved silent
// "OFF" slot (spec.md §4.1).
type Index int

// OffIndex is the reserved silent slot.
const OffIndex Index = 0

// MaxSamples is the project-wide capacity on sample slots (spec.md §4.1).
const MaxSamples = 1023

// MaxBytes is the project-wide in-memory size cap (spec.md §4.1).
const MaxBytes = 4 << 30

// loadHeadroomDB attenuates every loaded sample to preserve headroom
// (spec.md §4.1).
const loadHeadroomDB = -22.0

// TargetSampleRate is the rate every sample is resampled to at load time.
const TargetSampleRate = 48000

var (
	// ErrCapacityExceeded is returned when a load would exceed MaxSamples or MaxBytes.
	ErrCapacityExceeded = errors.New("sampledata: capacity exceeded")
	// ErrInvalidIndex is returned for reads of an index never handed out.
	ErrInvalidIndex = errors.New("sampledata: invalid index")
)

// Sample is an immutable decoded PCM buffer.
type Sample struct {
	Name       string
	SampleRate int // always TargetSampleRate after load-time resample
	Channels   int // 1 (mono) or 2 (interleaved stereo)
	Frames     []float32 // interleaved if Channels == 2
	LoopStart  int       // -1 if no loop metadata
	LoopEnd    int
	Resampled  bool // true if the source file was not already 48kHz
}

// FrameCount returns the number of sample frames (not interleaved values).
func (s *Sample) FrameCount() int {
	if s.Channels <= 0 {
		return 0
	}
	return len(s.Frames) / s.Channels
}

// Store owns every decoded sample for one project.
type Store struct {
	samples   []*Sample // index 0 is always nil / OFF
	totalSize int
}

// NewStore creates an empty store with the reserved OFF slot at index 0.
func NewStore() *Store {
	return &Store{samples: []*Sample{nil}}
}

// Load normalizes raw decoded PCM (already float32, any source sample rate)
// into the store, applying headroom attenuation and resampling to 48kHz if
// needed. It returns the sample's stable Index and whether a resample
// warning should be surfaced to the control context (spec.md §4.1).
func (s *Store) Load(name string, sourceRate, channels int, frames []float32, loopStart, loopEnd int) (Index, bool, error) {
	if len(s.samples) >= MaxSamples {
		return 0, false, ErrCapacityExceeded
	}
	size := len(frames) * 4
	if s.totalSize+size > MaxBytes {
		return 0, false, ErrCapacityExceeded
	}

	gain := math.Pow(10, loadHeadroomDB/20)
	attenuated := make([]float32, len(frames))
	for i, v := range frames {
		attenuated[i] = float32(float64(v) * gain)
	}

	resampled := false
	if sourceRate != TargetSampleRate && sourceRate > 0 {
		attenuated = resampleHermite(attenuated, channels, sourceRate, TargetSampleRate)
		ratio := float64(TargetSampleRate) / float64(sourceRate)
		if loopStart >= 0 {
			loopStart = int(float64(loopStart) * ratio)
		}
		if loopEnd >= 0 {
			loopEnd = int(float64(loopEnd) * ratio)
		}
		resampled = true
	}

	sample := &Sample{
		Name:       name,
		SampleRate: TargetSampleRate,
		Channels:   channels,
		Frames:     attenuated,
		LoopStart:  loopStart,
		LoopEnd:    loopEnd,
		Resampled:  resampled,
	}
	idx := Index(len(s.samples))
	s.samples = append(s.samples, sample)
	s.totalSize += len(attenuated) * 4
	return idx, resampled, nil
}

// Get returns the sample at idx, or nil for the OFF slot.
func (s *Store) Get(idx Index) (*Sample, error) {
	if idx == OffIndex {
		return nil, nil
	}
	if int(idx) < 0 || int(idx) >= len(s.samples) {
		return nil, ErrInvalidIndex
	}
	return s.samples[idx], nil
}

// Len returns the number of occupied slots, including the reserved OFF slot.
func (s *Store) Len() int { return len(s.samples) }

// resampleHermite performs band-limited-ish resampling using 4-point Hermite
// interpolation (the same interpolation the oscillator uses for pitch,
// spec.md §4.2), adequate for an offline load-time conversion.
func resampleHermite(frames []float32, channels, fromRate, toRate int) []float32 {
	if channels <= 0 {
		channels = 1
	}
	frameCount := len(frames) / channels
	if frameCount == 0 {
		return frames
	}
	ratio := float64(fromRate) / float64(toRate)
	outFrames := int(float64(frameCount) / ratio)
	out := make([]float32, outFrames*channels)
	for ch := 0; ch < channels; ch++ {
		for i := 0; i < outFrames; i++ {
			srcPos := float64(i) * ratio
			idx := int(srcPos)
			frac := srcPos - float64(idx)
			out[i*channels+ch] = float32(hermite4(frames, channels, ch, frameCount, idx, frac))
		}
	}
	return out
}

func hermite4(frames []float32, channels, ch, frameCount, idx int, frac float64) float64 {
	at := func(i int) float64 {
		if i < 0 {
			i = 0
		}
		if i >= frameCount {
			i = frameCount - 1
		}
		return float64(frames[i*channels+ch])
	}
	ym1, y0, y1, y2 := at(idx-1), at(idx), at(idx+1), at(idx+2)
	c0 := y0
	c1 := 0.5 * (y1 - ym1)
	c2 := ym1 - 2.5*y0 + 2*y1 - 0.5*y2
	c3 := 0.5*(y2-ym1) + 1.5*(y0-y1)
	return ((c3*frac+c2)*frac+c1)*frac + c0
}

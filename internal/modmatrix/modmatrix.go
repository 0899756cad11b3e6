// Package modmatrix implements spec.md §4.9: the control-rate mixer that
// sums modulation sources (per-voice LFOs, the mod envelope, per-track FX
// LFOs) onto a large destination set, clamping per destination and summing
// when more than one route targets the same place.
package modmatrix

import (
	"github.com/nortledge/strata/internal/lfo"
	"github.com/nortledge/strata/internal/voice"
)

// Category groups a destination by the part of the signal path it affects,
// mirroring spec.md §4.9's `{src_params, filter_params, amp_params,
// fx_params, routing}` partition.
type Category int

const (
	CategorySource Category = iota
	CategoryFilter
	CategoryAmp
	CategoryFX
	CategoryRouting
)

// Destination names one of the matrix's targets. Built-in per-voice
// destinations (pitch, cutoffs, pan) are fixed fields on voice.Voice;
// DestAmp has no voice field and ApplyToVoice ignores routes to it;
// FX-parameter and routing destinations are opened-ended (spec.md §4.9
// counts roughly 120 once every insert slot's up-to-8 parameters and every
// track's three sends are each their own addressable destination) and are
// represented generically via a ParamRef rather than one named constant per
// slot — see DESIGN.md.
type Destination int

const (
	DestPitch Destination = iota
	DestCutoffA
	DestCutoffB
	DestPan
	DestAmp
	// DestParamRef marks a Route whose Target is a caller-supplied ParamRef
	// (an FX parameter setter or a send-level setter) instead of one of the
	// fixed voice fields above.
	DestParamRef
)

// ParamRef is a generic modulation target for the open-ended FX/routing
// destinations: a getter/setter pair over a base value plus a clamp range,
// so the matrix can write a modulated value without knowing what it is.
type ParamRef struct {
	Category  Category
	Base      float64
	Min, Max  float64
	Apply     func(value float64)
}

func (p *ParamRef) clamp(v float64) float64 {
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// SourceKind identifies which of a voice/track's modulation sources a route reads.
type SourceKind int

const (
	SourceVoiceLFO1 SourceKind = iota
	SourceVoiceLFO2
	SourceModEnv
	SourceFXLFO1
	SourceFXLFO2
)

// Route binds one source to one destination with a bipolar depth.
type Route struct {
	Source      SourceKind
	Destination Destination
	Depth       float64 // bipolar
	Param       *ParamRef // only used when Destination == DestParamRef
}

// VoiceSources is one voice's pool of sampled sources for one control tick.
type VoiceSources struct {
	LFO1Value   float64
	LFO2Value   float64
	ModEnvValue float64
}

// SampleVoiceSources advances a voice's LFOs and mod envelope by one
// control-rate tick and returns their current values for routing.
func SampleVoiceSources(v *voice.Voice, stepDurationSec, tickSteps float64) VoiceSources {
	return VoiceSources{
		LFO1Value:   v.LFO1.Sample(stepDurationSec, tickSteps),
		LFO2Value:   v.LFO2.Sample(stepDurationSec, tickSteps),
		ModEnvValue: v.ModEnv.Level(),
	}
}

// TrackSources is one track's two FX LFOs, sampled once per control tick and
// shared by every route that targets that track's FX/routing destinations.
type TrackSources struct {
	FXLFO1 *lfo.LFO
	FXLFO2 *lfo.LFO

	fxLFO1Value float64
	fxLFO2Value float64
}

// Sample advances both FX LFOs by one control-rate tick.
func (t *TrackSources) Sample(stepDurationSec, tickSteps float64) {
	t.fxLFO1Value = t.FXLFO1.Sample(stepDurationSec, tickSteps)
	t.fxLFO2Value = t.FXLFO2.Sample(stepDurationSec, tickSteps)
}

// Matrix is one voice's or one track's set of active routes. Voices and
// tracks each own their own Matrix (spec.md §4.9's sources are per-voice or
// per-track, never shared across them).
type Matrix struct {
	Routes []Route

	basePitch   float64
	baseCutoffA float64
	baseCutoffB float64
	basePan     float64
}

// NewMatrix creates an empty matrix; call SetBase* to establish each
// destination's unmodulated value before the first Apply.
func NewMatrix() *Matrix {
	return &Matrix{}
}

func (m *Matrix) SetBasePitch(v float64)   { m.basePitch = v }
func (m *Matrix) SetBaseCutoffA(v float64) { m.baseCutoffA = v }
func (m *Matrix) SetBaseCutoffB(v float64) { m.baseCutoffB = v }
func (m *Matrix) SetBasePan(v float64)     { m.basePan = v }

// AddRoute registers a new source->destination binding.
func (m *Matrix) AddRoute(r Route) {
	m.Routes = append(m.Routes, r)
}

// ApplyToVoice sums every route targeting a voice-owned destination (pitch,
// cutoffA, cutoffB, pan) and writes the result into v, clamping pan to
// [-1, 1], using the already-sampled vs for this control tick. DestParamRef
// routes are applied through their ParamRef, clamped to its range.
func (m *Matrix) ApplyToVoice(v *voice.Voice, vs VoiceSources, ts *TrackSources) {
	var pitch, cutoffA, cutoffB, pan float64
	pitch = m.basePitch
	cutoffA = m.baseCutoffA
	cutoffB = m.baseCutoffB
	pan = m.basePan

	for _, r := range m.Routes {
		val := m.sourceValue(r.Source, vs, ts) * r.Depth
		switch r.Destination {
		case DestPitch:
			pitch += val
		case DestCutoffA:
			cutoffA += val
		case DestCutoffB:
			cutoffB += val
		case DestPan:
			pan += val
		case DestParamRef:
			if r.Param != nil {
				r.Param.Apply(r.Param.clamp(r.Param.Base + val))
			}
		}
	}

	v.PitchModSemitones = pitch - m.basePitch
	v.CutoffModA = cutoffA - m.baseCutoffA
	v.CutoffModB = cutoffB - m.baseCutoffB
	if pan < -1 {
		pan = -1
	}
	if pan > 1 {
		pan = 1
	}
	v.Pan = pan
}

// ApplyParamRefs runs every DestParamRef route that isn't gated on a voice
// source (i.e. FX/routing destinations driven only by a track's FX LFOs),
// for matrices that have no associated voice (bus/send/mix track FX).
func (m *Matrix) ApplyParamRefs(ts *TrackSources) {
	for _, r := range m.Routes {
		if r.Destination != DestParamRef || r.Param == nil {
			continue
		}
		if r.Source != SourceFXLFO1 && r.Source != SourceFXLFO2 {
			continue
		}
		val := m.sourceValue(r.Source, VoiceSources{}, ts) * r.Depth
		r.Param.Apply(r.Param.clamp(r.Param.Base + val))
	}
}

func (m *Matrix) sourceValue(kind SourceKind, vs VoiceSources, ts *TrackSources) float64 {
	switch kind {
	case SourceVoiceLFO1:
		return vs.LFO1Value
	case SourceVoiceLFO2:
		return vs.LFO2Value
	case SourceModEnv:
		return vs.ModEnvValue
	case SourceFXLFO1:
		if ts == nil {
			return 0
		}
		return ts.fxLFO1Value
	case SourceFXLFO2:
		if ts == nil {
			return 0
		}
		return ts.fxLFO2Value
	}
	return 0
}

// Package engine implements spec.md §3/§5's root aggregate: per-block
// dispatch across the 16 fixed tracks, the bus/send/mix routing
// internal/track deliberately leaves to its caller, a limiter on the final
// mix, readback publishing, and the NaN-guard force-release policy. It also
// owns the one Sequencer that drives all 16 tracks' machines (spec.md §2:
// "each track advances its sequencer position for the block, applies any
// step events to its voices") and the per-track modulation matrix sampling
// spec.md §4.9 calls for at control rate.
package engine

import (
	"math"

	"github.com/nortledge/strata/internal/control"
	"github.com/nortledge/strata/internal/recorder"
	"github.com/nortledge/strata/internal/sampledata"
	"github.com/nortledge/strata/internal/sequencer"
	"github.com/nortledge/strata/internal/track"
)

// Engine owns the 16 fixed tracks and renders them into a stereo mix.
type Engine struct {
	SampleRate int
	Tracks     [track.Count]*track.Track
	Store      *sampledata.Store

	// Sequencer drives every track's Machine.NoteOn/NoteOff through voices,
	// the single-Pattern realization of spec.md §4.10: one Pattern already
	// bundles all 16 TrackPatterns, so one Sequencer (not one per track)
	// walks them in lock step.
	Sequencer *sequencer.Sequencer

	Commands *control.CommandQueue
	Readback *control.Readback
	Retire   *control.Retirement
	Gain     *control.ParamMailbox

	// Recorder, when non-nil, is fed the post-fader signal of
	// Tracks[RecorderTap] once per sample (spec.md §4.11's sampling
	// recorder tapping "any internal track or bus").
	Recorder    *recorder.Recorder
	RecorderTap int

	voiceEngine  *trackVoiceEngine
	blockIndex   int64
	nanGuardHits uint64
}

// New creates an Engine over an already-populated set of 16 tracks (index 0
// must be Audio[0], ..., 15 must be Mix), with a fresh, empty default
// pattern loaded into its Sequencer.
func New(tracks [track.Count]*track.Track, store *sampledata.Store, sampleRate int) *Engine {
	e := &Engine{
		SampleRate:  sampleRate,
		Tracks:      tracks,
		Store:       store,
		Commands:    control.NewCommandQueue(),
		Readback:    control.NewReadback(),
		Retire:      control.NewRetirement(),
		Gain:        control.NewParamMailbox(1),
		RecorderTap: -1,
	}
	e.voiceEngine = &trackVoiceEngine{tracks: &e.Tracks, store: store, rng: 0x9E3779B97F4A7C15}
	e.Sequencer = sequencer.New(e.voiceEngine, sequencer.NewPattern(), sampleRate)
	return e
}

// LoadPattern replaces the pattern the engine's Sequencer plays, e.g. when a
// project's pattern selection changes.
func (e *Engine) LoadPattern(p *sequencer.Pattern) {
	e.Sequencer = sequencer.New(e.voiceEngine, p, e.SampleRate)
}

// ArmRecorder directs trackIndex's post-fader output into rec, one sample at
// a time, until the caller disarms it (ArmRecorder(nil, -1)).
func (e *Engine) ArmRecorder(rec *recorder.Recorder, trackIndex int) {
	e.Recorder = rec
	e.RecorderTap = trackIndex
}

// trackVoiceEngine adapts the fixed track array to sequencer.VoiceEngine,
// resolving a sequencer track index to that track's Machine and remembering
// the last note it sounded so NoteOff (which the sequencer calls with no
// note number — spec.md §4.10 step execution is one note per track per
// step) can release the right voice.
type trackVoiceEngine struct {
	tracks   *[track.Count]*track.Track
	store    *sampledata.Store
	rng      uint64
	lastNote [track.Count]int
}

// nextRand draws a deterministic [0,1) value for Machine.NoteOn's
// round-robin/random-layer selection, the same xorshift64 construction
// internal/lfo.LFO.nextRandom and internal/sequencer.rngState use.
func (v *trackVoiceEngine) nextRand() float64 {
	v.rng ^= v.rng << 13
	v.rng ^= v.rng >> 7
	v.rng ^= v.rng << 17
	return float64(v.rng%1_000_000) / 1_000_000.0
}

func (v *trackVoiceEngine) NoteOn(trackIdx, note, velocity int) {
	if trackIdx < 0 || trackIdx >= track.Count {
		return
	}
	tr := v.tracks[trackIdx]
	if tr == nil || tr.Kind != track.KindAudio || tr.Machine == nil {
		return
	}
	v.lastNote[trackIdx] = note
	tr.Machine.NoteOn(note, velocity, v.store, v.nextRand())
}

func (v *trackVoiceEngine) NoteOff(trackIdx int) {
	if trackIdx < 0 || trackIdx >= track.Count {
		return
	}
	tr := v.tracks[trackIdx]
	if tr == nil || tr.Kind != track.KindAudio || tr.Machine == nil {
		return
	}
	tr.Machine.NoteOff(v.lastNote[trackIdx], v.store, v.nextRand())
}

func (v *trackVoiceEngine) SetParamLock(trackIdx, paramID int, value float64) {
	if trackIdx < 0 || trackIdx >= track.Count {
		return
	}
	tr := v.tracks[trackIdx]
	if tr == nil {
		return
	}
	tr.SetParam(track.ParamID(paramID), value)
}

// routeTargets enumerates the bus/send indices routing.Route addresses
// within the fixed 16-track layout (spec.md §3: Bus[8..11], Send[12..14],
// Mix[15]).
const (
	busBase  = 8
	sendBase = 12
	mixIndex = 15
)

// ProcessBlock renders frames stereo frames into dst (interleaved L/R),
// sampling every track's modulation matrix once for the block (spec.md
// §4.9: "one sample per audio block"), driving the Sequencer and draining
// due commands at each sample's deadline, and publishing one readback
// snapshot at the end of the block.
func (e *Engine) ProcessBlock(dst []float32, frames int) {
	var busL, busR [4]float32
	var sendL, sendR [3]float32
	var mixL, mixR float32

	var peaksL, peaksR [8]float32

	blockDurationSec := float64(frames) / float64(e.SampleRate)
	tickSteps := 0.0
	if e.Sequencer != nil {
		if stepDur := e.Sequencer.StepDurationSeconds(); stepDur > 0 {
			tickSteps = blockDurationSec / stepDur
		}
	}
	for i := range e.Tracks {
		if e.Tracks[i] != nil {
			e.Tracks[i].ApplyModulation(blockDurationSec, tickSteps)
		}
	}

	faultsBefore := e.nanGuardHits
	for f := 0; f < frames; f++ {
		deadline := e.blockIndex
		e.Commands.DrainUpTo(deadline, func(c control.Command) {
			if c.Apply != nil {
				c.Apply()
			}
		})
		if e.Sequencer != nil {
			e.Sequencer.Advance()
		}

		busL, busR = [4]float32{}, [4]float32{}
		sendL, sendR = [3]float32{}, [3]float32{}
		mixL, mixR = 0, 0

		for i := 0; i < track.AudioTrackCount; i++ {
			tr := e.Tracks[i]
			if tr == nil {
				continue
			}
			l, r := e.renderTrack(tr)
			if i < len(peaksL) {
				if a := abs32(l); a > peaksL[i] {
					peaksL[i] = a
				}
				if a := abs32(r); a > peaksR[i] {
					peaksR[i] = a
				}
			}
			if e.Recorder != nil && i == e.RecorderTap {
				e.Recorder.Process(l, r)
			}
			e.routeSends(tr, l, r, &sendL, &sendR)
			e.accumulateRoute(tr.Route, l, r, &busL, &busR, &mixL, &mixR)
		}

		for i := 0; i < track.BusTrackCount; i++ {
			tr := e.Tracks[busBase+i]
			if tr == nil {
				continue
			}
			l, r := tr.Process(e.Store, busL[i], busR[i])
			e.accumulateRoute(tr.Route, l, r, &busL, &busR, &mixL, &mixR)
		}

		for i := 0; i < track.SendTrackCount; i++ {
			tr := e.Tracks[sendBase+i]
			if tr == nil {
				continue
			}
			l, r := tr.Process(e.Store, sendL[i], sendR[i])
			mixL += l
			mixR += r
		}

		mix := e.Tracks[mixIndex]
		if mix != nil {
			mixL, mixR = mix.Process(e.Store, mixL, mixR)
		}

		gain := float32(e.Gain.Load())
		outL, outR := mixL*gain, mixR*gain
		outL, outR = e.nanGuard(outL, outR)
		outL, outR = limit(outL, outR)

		dst[f*2] = outL
		dst[f*2+1] = outR
		e.blockIndex++
	}
	if e.nanGuardHits != faultsBefore {
		for i := range dst[:frames*2] {
			dst[i] = 0
		}
	}

	e.Readback.Publish(control.Snapshot{
		Step:        int(e.blockIndex),
		VoicePeaksL: peaksL,
		VoicePeaksR: peaksR,
	})
}

func (e *Engine) renderTrack(tr *track.Track) (float32, float32) {
	return tr.Process(e.Store, 0, 0)
}

// routeSends mixes a track's three bipolar send amounts into the send bus
// accumulators.
func (e *Engine) routeSends(tr *track.Track, l, r float32, sendL, sendR *[3]float32) {
	amounts := [3]float64{tr.Sends.A, tr.Sends.B, tr.Sends.C}
	for i, amt := range amounts {
		g := float32(amt)
		sendL[i] += l * g
		sendR[i] += r * g
	}
}

// accumulateRoute adds a track's output into whichever single destination
// its Route names (spec.md §4.7: exactly one of Mix/OutC-D/OutE-F/Bus1-4).
func (e *Engine) accumulateRoute(route track.Route, l, r float32, busL, busR *[4]float32, mixL, mixR *float32) {
	switch route {
	case track.RouteBus1:
		busL[0] += l
		busR[0] += r
	case track.RouteBus2:
		busL[1] += l
		busR[1] += r
	case track.RouteBus3:
		busL[2] += l
		busR[2] += r
	case track.RouteBus4:
		busL[3] += l
		busR[3] += r
	default: // RouteMix, RouteOutCD, RouteOutEF all sum into the main mix bus
		*mixL += l
		*mixR += r
	}
}

// nanGuard replaces a NaN/Inf sample with silence and force-releases every
// audio track's voice pool, incrementing a fault counter (spec.md §7's
// "transient audio fault" recovery: local, no propagation). ProcessBlock
// then silences the whole block in which the guard fired.
func (e *Engine) nanGuard(l, r float32) (float32, float32) {
	if isFinite(l) && isFinite(r) {
		return l, r
	}
	e.nanGuardHits++
	for i := 0; i < track.AudioTrackCount; i++ {
		tr := e.Tracks[i]
		if tr != nil && tr.Pool != nil {
			tr.Pool.Kill()
		}
	}
	return 0, 0
}

// NaNGuardFaults reports how many times the guard has fired.
func (e *Engine) NaNGuardFaults() uint64 { return e.nanGuardHits }

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// limit is a brick-wall clamp to [-1, 1]; spec.md §7 requires the mix never
// exceeds full scale regardless of upstream gain staging.
func limit(l, r float32) (float32, float32) {
	return clamp1(l), clamp1(r)
}

func clamp1(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

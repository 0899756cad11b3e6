// Package voice implements the per-voice oscillator/sample player, filter
// pair, envelopes, and voice-pool allocation/stealing described in spec.md
// §4.2 and §4.6.
package voice

import (
	"math"

	"github.com/nortledge/strata/internal/sampledata"
)

// Interpolation selects how the oscillator reads between sample frames.
type Interpolation int

const (
	InterpLinear Interpolation = iota
	InterpHermite
)

// PlayMode selects the sample playback direction/looping behavior.
type PlayMode int

const (
	PlayFwdOneShot PlayMode = iota
	PlayRevOneShot
	PlayFwdLoop
	PlayRevLoop
)

const maxCrossfadeFrames = 4096

// Oscillator is the per-voice phase accumulator and interpolator contract of
// spec.md §4.2: next_sample(phase, sample_idx, pitch_ratio) -> (L, R).
type Oscillator struct {
	Phase           float64 // fractional frame position into the sample
	PlayMode        PlayMode
	Interp          Interpolation
	CrossfadeFrames int // configured lx upper bound; effective lx also capped by loop length and 4096

	StartFrame int // region offset opcode; 0 = sample start
	EndFrame   int // region end opcode; -1 = sample end
}

// Reset positions the oscillator at StartFrame (or EndFrame, for reverse
// modes) of the given sample.
func (o *Oscillator) Reset(sample *sampledata.Sample) {
	if sample == nil {
		o.Phase = 0
		return
	}
	if o.PlayMode == PlayRevOneShot || o.PlayMode == PlayRevLoop {
		o.Phase = float64(o.endFrame(sample) - 1)
	} else {
		o.Phase = float64(o.StartFrame)
	}
}

func (o *Oscillator) endFrame(sample *sampledata.Sample) int {
	if o.EndFrame > 0 && o.EndFrame <= sample.FrameCount() {
		return o.EndFrame
	}
	return sample.FrameCount()
}

// Next produces one stereo output sample and advances phase by pitchRatio
// frames. finished reports the oscillator reached the end of a one-shot, or
// the sample is the OFF slot (spec.md §4.2 failure mode: silence + early
// release).
func (o *Oscillator) Next(sample *sampledata.Sample, pitchRatio float64) (l, r float32, finished bool) {
	if sample == nil {
		return 0, 0, true
	}
	frameCount := sample.FrameCount()
	if frameCount == 0 {
		return 0, 0, true
	}
	regionEnd := o.endFrame(sample)

	loopStart, loopEnd := sample.LoopStart, sample.LoopEnd
	looping := (o.PlayMode == PlayFwdLoop || o.PlayMode == PlayRevLoop) &&
		loopStart >= 0 && loopEnd > loopStart && loopEnd <= regionEnd

	pos := o.Phase
	outL, outR := o.interpAt(sample, pos)

	if looping {
		lx := o.crossfadeLen(loopEnd - loopStart)
		if o.PlayMode == PlayFwdLoop {
			if pos >= float64(loopEnd-lx) && pos < float64(loopEnd) && lx > 0 {
				t := (pos - float64(loopEnd-lx)) / float64(lx)
				bl, br := o.interpAt(sample, pos-float64(loopEnd-loopStart))
				outL = outL*float32(1-t) + bl*float32(t)
				outR = outR*float32(1-t) + br*float32(t)
			}
		} else {
			if pos < float64(loopStart+lx) && pos >= float64(loopStart) && lx > 0 {
				t := (float64(loopStart+lx) - pos) / float64(lx)
				bl, br := o.interpAt(sample, pos+float64(loopEnd-loopStart))
				outL = outL*float32(1-t) + bl*float32(t)
				outR = outR*float32(1-t) + br*float32(t)
			}
		}
	}

	switch o.PlayMode {
	case PlayFwdOneShot, PlayFwdLoop:
		o.Phase += pitchRatio
	default:
		o.Phase -= pitchRatio
	}

	switch o.PlayMode {
	case PlayFwdOneShot:
		finished = o.Phase >= float64(regionEnd)
	case PlayRevOneShot:
		finished = o.Phase < float64(o.StartFrame)
	case PlayFwdLoop:
		if looping {
			if o.Phase >= float64(loopEnd) {
				o.Phase -= float64(loopEnd - loopStart)
			}
		} else {
			finished = o.Phase >= float64(regionEnd)
		}
	case PlayRevLoop:
		if looping {
			if o.Phase < float64(loopStart) {
				o.Phase += float64(loopEnd - loopStart)
			}
		} else {
			finished = o.Phase < float64(o.StartFrame)
		}
	}
	return outL, outR, finished
}

func (o *Oscillator) crossfadeLen(loopLen int) int {
	lx := o.CrossfadeFrames
	if lx <= 0 {
		lx = maxCrossfadeFrames
	}
	if lx > maxCrossfadeFrames {
		lx = maxCrossfadeFrames
	}
	if lx > loopLen {
		lx = loopLen
	}
	if lx < 0 {
		lx = 0
	}
	return lx
}

func (o *Oscillator) interpAt(sample *sampledata.Sample, pos float64) (float32, float32) {
	frameCount := sample.FrameCount()
	idx := int(pos)
	frac := pos - float64(idx)
	if frac < 0 {
		idx--
		frac += 1
	}
	if o.Interp == InterpHermite {
		return hermiteStereo(sample, frameCount, idx, frac)
	}
	l0, r0 := frameAt(sample, frameCount, idx)
	l1, r1 := frameAt(sample, frameCount, idx+1)
	t := float32(frac)
	return l0 + (l1-l0)*t, r0 + (r1-r0)*t
}

func frameAt(sample *sampledata.Sample, frameCount, idx int) (float32, float32) {
	if idx < 0 {
		idx = 0
	}
	if idx >= frameCount {
		idx = frameCount - 1
	}
	if frameCount == 0 {
		return 0, 0
	}
	if sample.Channels == 1 {
		v := sample.Frames[idx]
		return v, v
	}
	return sample.Frames[idx*2], sample.Frames[idx*2+1]
}

func hermiteStereo(sample *sampledata.Sample, frameCount, idx int, frac float64) (float32, float32) {
	lm1, rm1 := frameAt(sample, frameCount, idx-1)
	l0, r0 := frameAt(sample, frameCount, idx)
	l1, r1 := frameAt(sample, frameCount, idx+1)
	l2, r2 := frameAt(sample, frameCount, idx+2)
	return hermite(lm1, l0, l1, l2, frac), hermite(rm1, r0, r1, r2, frac)
}

func hermite(ym1, y0, y1, y2 float32, frac float64) float32 {
	t := float32(frac)
	c0 := y0
	c1 := 0.5 * (y1 - ym1)
	c2 := ym1 - 2.5*y0 + 2*y1 - 0.5*y2
	c3 := 0.5*(y2-ym1) + 1.5*(y0-y1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// PitchRatio converts a bipolar semitone offset (tune + key-tracking +
// modulation, spec.md §4.2) into a multiplicative playback-rate ratio.
func PitchRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12.0)
}

package recorder

import (
	"fmt"
	"time"

	"github.com/nortledge/strata/internal/instrument"
	"github.com/nortledge/strata/internal/sampledata"
)

// NoteOut is the MIDI note-out target the auto-sampler drives while
// recording each note/velocity layer.
type NoteOut interface {
	SendNoteOn(note, velocity int)
	SendNoteOff(note int)
}

// Input supplies one block of interleaved stereo audio per call, returning
// the number of frames actually filled.
type Input interface {
	ReadBlock(dst []float32) int
}

// AutoSamplerConfig describes one auto-sampling pass.
type AutoSamplerConfig struct {
	LowNote, HighNote int
	SampleEvery       int // semitone step between captured notes
	VelocityLayers    []int
	Latency           time.Duration // wait after note-on before recording starts
	NoteDuration      time.Duration
	ReleaseTime       time.Duration
	Name              string
}

// Run drives out/input through every (note, velocity layer) in cfg, trims
// each capture to its onset, and registers the results as a new multi-sample
// Instrument backed by store.
func Run(cfg AutoSamplerConfig, out NoteOut, input Input, store *sampledata.Store, sampleRate int) (*instrument.Instrument, error) {
	if cfg.SampleEvery <= 0 {
		cfg.SampleEvery = 1
	}
	if len(cfg.VelocityLayers) == 0 {
		cfg.VelocityLayers = []int{100}
	}

	var regions []instrument.Region
	for note := cfg.LowNote; note <= cfg.HighNote; note += cfg.SampleEvery {
		loKey, hiKey := note-cfg.SampleEvery/2, note+cfg.SampleEvery/2
		if loKey < 0 {
			loKey = 0
		}
		if hiKey > 127 {
			hiKey = 127
		}
		loVel := 0
		for li, vel := range cfg.VelocityLayers {
			hiVel := 127
			if li < len(cfg.VelocityLayers)-1 {
				hiVel = (vel + cfg.VelocityLayers[li+1]) / 2
			}

			captured := captureOne(out, input, note, vel, cfg.Latency, cfg.NoteDuration, cfg.ReleaseTime, sampleRate)
			trimmed := trimSilence(captured, silenceThreshold)
			Normalize(trimmed)

			idx, _, err := store.Load(fmt.Sprintf("%s_n%d_v%d", cfg.Name, note, vel), sampleRate, 2, trimmed, -1, -1)
			if err != nil {
				return nil, fmt.Errorf("autosampler: note %d vel %d: %w", note, vel, err)
			}

			regions = append(regions, instrument.Region{
				LoKey: loKey, HiKey: hiKey,
				LoVel: loVel, HiVel: hiVel,
				Sample: idx, RootNote: note,
				End: -1, LoopStart: -1, LoopEnd: -1,
			})
			loVel = hiVel + 1
		}
	}
	return instrument.NewInstrument(cfg.Name, regions), nil
}

// silenceThreshold is the peak-magnitude floor below which a captured frame
// counts as leading/trailing silence to trim.
const silenceThreshold = 0.002

func captureOne(out NoteOut, input Input, note, velocity int, latency, noteDuration, releaseTime time.Duration, sampleRate int) []float32 {
	out.SendNoteOn(note, velocity)
	time.Sleep(latency)

	total := noteDuration + releaseTime
	frames := int(total.Seconds() * float64(sampleRate))
	buf := make([]float32, 0, frames*2)
	block := make([]float32, 1024)

	elapsed := time.Duration(0)
	noteOffSent := false
	for len(buf)/2 < frames {
		n := input.ReadBlock(block)
		if n <= 0 {
			break
		}
		buf = append(buf, block[:n*2]...)
		elapsed += time.Duration(float64(n) / float64(sampleRate) * float64(time.Second))
		if !noteOffSent && elapsed >= noteDuration {
			out.SendNoteOff(note)
			noteOffSent = true
		}
	}
	if !noteOffSent {
		out.SendNoteOff(note)
	}
	return buf
}

// trimSilence drops leading and trailing interleaved-stereo frames whose
// magnitude stays under threshold.
func trimSilence(samples []float32, threshold float32) []float32 {
	frames := len(samples) / 2
	start := 0
	for start < frames {
		if abs32(samples[start*2]) > threshold || abs32(samples[start*2+1]) > threshold {
			break
		}
		start++
	}
	end := frames
	for end > start {
		if abs32(samples[(end-1)*2]) > threshold || abs32(samples[(end-1)*2+1]) > threshold {
			break
		}
		end--
	}
	return Trim(samples, start, end)
}

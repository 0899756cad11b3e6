// Package audiostream bridges an engine.Engine to ebiten/v2/audio's player,
// adapted from the teacher's internal/audio/stream.go: an io.Reader that
// pulls interleaved float32 frames from a Source and hands them to ebiten's
// 32-bit-float player.
package audiostream

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Source is anything that can render a block of interleaved stereo float32
// audio on demand; engine.Engine.ProcessBlock satisfies this via a small
// adapter (see EngineSource).
type Source interface {
	Process(dst []float32, frames int)
}

// EngineSource adapts engine.Engine's (dst []float32, frames int) signature
// to Source without audiostream importing internal/engine directly, keeping
// this package usable with any block renderer.
type EngineSource struct {
	ProcessFunc func(dst []float32, frames int)
}

// Process implements Source.
func (s EngineSource) Process(dst []float32, frames int) { s.ProcessFunc(dst, frames) }

// StreamReader implements io.Reader over a Source, matching
// ebitaudio.Context.NewPlayerF32's expected 32-bit-float little-endian
// interleaved stereo format.
type StreamReader struct {
	mu     sync.Mutex
	source Source
	buf    []float32
}

// NewStreamReader wraps source for use with ebiten's audio context.
func NewStreamReader(source Source) *StreamReader {
	return &StreamReader{source: source}
}

// Read fills p with as many whole stereo frames as fit (8 bytes/frame: two
// float32 channels), rendering fresh audio from the source each call.
func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf, frames)
	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	return frames * 8, nil
}

// Close implements io.Closer; the underlying source has no resources of its
// own to release.
func (r *StreamReader) Close() error { return nil }

// Player drives a StreamReader through ebiten's shared audio context.
type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

var (
	contextOnce sync.Once
	context     *ebitaudio.Context
	contextErr  error
	contextRate int
)

func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		context = ebitaudio.NewContext(sampleRate)
	})
	if contextErr != nil {
		return nil, contextErr
	}
	if contextRate != sampleRate {
		return nil, fmt.Errorf("audiostream: context already initialized at %d Hz (requested %d Hz)", contextRate, sampleRate)
	}
	return context, nil
}

// NewPlayer creates a Player streaming source's output at sampleRate.
func NewPlayer(sampleRate int, source Source) (*Player, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()            { p.player.Play() }
func (p *Player) Pause()           { p.player.Pause() }
func (p *Player) IsPlaying() bool  { return p.player.IsPlaying() }
func (p *Player) Position() time.Duration { return p.player.Position() }

// Stop pauses and releases the underlying ebiten player.
func (p *Player) Stop() error {
	p.player.Pause()
	return p.player.Close()
}

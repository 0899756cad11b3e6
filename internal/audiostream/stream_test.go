package audiostream

import (
	"encoding/binary"
	"math"
	"testing"
)

type fakeSource struct {
	calls int
}

func (f *fakeSource) Process(dst []float32, frames int) {
	f.calls++
	for i := 0; i < frames; i++ {
		dst[i*2] = 0.5
		dst[i*2+1] = -0.5
	}
}

func TestStreamReaderFillsWholeFramesOnly(t *testing.T) {
	src := &fakeSource{}
	r := NewStreamReader(src)

	p := make([]byte, 8*10+3) // 10 whole frames plus a partial
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 80 {
		t.Fatalf("expected 80 bytes (10 frames), got %d", n)
	}
	if src.calls != 1 {
		t.Fatalf("expected exactly one Process call, got %d", src.calls)
	}
}

func TestStreamReaderEncodesLittleEndianFloat32(t *testing.T) {
	src := &fakeSource{}
	r := NewStreamReader(src)

	p := make([]byte, 8)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l := math.Float32frombits(binary.LittleEndian.Uint32(p[0:4]))
	rr := math.Float32frombits(binary.LittleEndian.Uint32(p[4:8]))
	if l != 0.5 || rr != -0.5 {
		t.Errorf("expected decoded l=0.5 r=-0.5, got l=%f r=%f", l, rr)
	}
}

func TestEngineSourceDelegatesToProcessFunc(t *testing.T) {
	var gotFrames int
	s := EngineSource{ProcessFunc: func(dst []float32, frames int) { gotFrames = frames }}
	s.Process(make([]float32, 4), 2)
	if gotFrames != 2 {
		t.Fatalf("expected ProcessFunc called with frames=2, got %d", gotFrames)
	}
}

package audioio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func buildWAV(t *testing.T, sampleRate int, channels int, bits uint16, format uint16, samples []int32) []byte {
	t.Helper()
	var data bytes.Buffer
	for _, s := range samples {
		switch bits {
		case 16:
			binary.Write(&data, binary.LittleEndian, int16(s))
		case 32:
			if format == wavFormatFloat {
				binary.Write(&data, binary.LittleEndian, math.Float32bits(float32(s)/2147483648.0))
			} else {
				binary.Write(&data, binary.LittleEndian, int32(s))
			}
		}
	}
	dataBytes := data.Bytes()

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(dataBytes)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, format)
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*int(bits)/8))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*int(bits)/8))
	binary.Write(&buf, binary.LittleEndian, bits)
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(dataBytes)))
	buf.Write(dataBytes)
	return buf.Bytes()
}

func TestDecodeWAV16BitMono(t *testing.T) {
	raw := buildWAV(t, 44100, 1, 16, wavFormatPCM, []int32{0, 16384, -16384, 32767})
	d, err := DecodeWAV(raw)
	if err != nil {
		t.Fatal(err)
	}
	if d.SampleRate != 44100 || d.Channels != 1 {
		t.Errorf("unexpected header: rate=%d channels=%d", d.SampleRate, d.Channels)
	}
	if len(d.Frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(d.Frames))
	}
	if d.Frames[1] < 0.49 || d.Frames[1] > 0.51 {
		t.Errorf("expected ~0.5, got %f", d.Frames[1])
	}
}

func TestDecodeWAVFloat32(t *testing.T) {
	raw := buildWAV(t, 48000, 2, 32, wavFormatFloat, []int32{1073741824, -1073741824, 0, 0})
	d, err := DecodeWAV(raw)
	if err != nil {
		t.Fatal(err)
	}
	if d.Channels != 2 {
		t.Errorf("expected stereo, got %d channels", d.Channels)
	}
}

func TestDecodeWAVRejectsBadHeader(t *testing.T) {
	if _, err := DecodeWAV([]byte("not a wav file at all")); err != ErrNotWAV {
		t.Errorf("expected ErrNotWAV, got %v", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	frames := []float32{0.1, -0.1, 0.5, -0.5}
	if err := EncodeWAV(&buf, 48000, 2, frames); err != nil {
		t.Fatal(err)
	}
	d, err := DecodeWAV(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range frames {
		if math.Abs(float64(f-d.Frames[i])) > 1e-6 {
			t.Errorf("round-trip mismatch at %d: %f != %f", i, f, d.Frames[i])
		}
	}
}

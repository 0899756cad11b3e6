package recorder

import (
	"encoding/binary"
	"io"
	"os"
)

// WAVWriter writes interleaved stereo float32 samples as 16-bit PCM WAV,
// adapted from oisee-abytetracker's mono WAVWriter for stereo float32 input
// at the caller's sample rate.
type WAVWriter struct {
	writer      io.Writer
	sampleRate  int
	channels    int
	dataWritten int
}

// NewWAVWriter creates a WAV writer for the given channel count.
func NewWAVWriter(w io.Writer, sampleRate, channels int) *WAVWriter {
	return &WAVWriter{writer: w, sampleRate: sampleRate, channels: channels}
}

// WriteHeader writes the 44-byte canonical WAV header for dataSize bytes of
// 16-bit PCM payload.
func (w *WAVWriter) WriteHeader(dataSize int) error {
	w.writer.Write([]byte("RIFF"))
	binary.Write(w.writer, binary.LittleEndian, uint32(dataSize+36))
	w.writer.Write([]byte("WAVE"))

	w.writer.Write([]byte("fmt "))
	binary.Write(w.writer, binary.LittleEndian, uint32(16))
	binary.Write(w.writer, binary.LittleEndian, uint16(1))
	binary.Write(w.writer, binary.LittleEndian, uint16(w.channels))
	binary.Write(w.writer, binary.LittleEndian, uint32(w.sampleRate))
	byteRate := w.sampleRate * w.channels * 2
	binary.Write(w.writer, binary.LittleEndian, uint32(byteRate))
	blockAlign := w.channels * 2
	binary.Write(w.writer, binary.LittleEndian, uint16(blockAlign))
	binary.Write(w.writer, binary.LittleEndian, uint16(16))

	w.writer.Write([]byte("data"))
	binary.Write(w.writer, binary.LittleEndian, uint32(dataSize))
	return nil
}

// WriteSamples writes interleaved float32 samples (already in [-1,1]) as
// 16-bit PCM.
func (w *WAVWriter) WriteSamples(samples []float32) error {
	for _, s := range samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		s16 := int16(s * 32767)
		if err := binary.Write(w.writer, binary.LittleEndian, s16); err != nil {
			return err
		}
		w.dataWritten += 2
	}
	return nil
}

// SaveWAV writes interleaved stereo (or mono, if channels==1) samples to a
// new file at path as a 16-bit PCM WAV at sampleRate.
func SaveWAV(path string, samples []float32, sampleRate, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := NewWAVWriter(f, sampleRate, channels)
	if err := w.WriteHeader(len(samples) * 2); err != nil {
		return err
	}
	return w.WriteSamples(samples)
}

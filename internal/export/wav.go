// ABOUTME: PCM to WAV file export
// ABOUTME: Writes decoded chunks out through the go-audio WAV encoder
package export

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/unjello/foo-input-amr/internal/audio"
)

// WAVWriter encodes PCM chunks into a single WAV file.
type WAVWriter struct {
	file    *os.File
	encoder *wav.Encoder
	format  audio.Format
}

// NewWAVWriter creates the output file and writes the WAV header for the
// given format.
func NewWAVWriter(path string, format audio.Format) (*WAVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	enc := wav.NewEncoder(f, format.SampleRate, 16, format.Channels, 1)

	return &WAVWriter{
		file:    f,
		encoder: enc,
		format:  format,
	}, nil
}

// Write appends one chunk. All chunks must share the writer's format.
func (w *WAVWriter) Write(chunk audio.Chunk) error {
	if chunk.Format != w.format {
		return fmt.Errorf("chunk format %+v does not match writer format %+v",
			chunk.Format, w.format)
	}

	samples := make([]int, len(chunk.Samples))
	for i, s := range chunk.Samples {
		samples[i] = int(s)
	}

	if err := w.encoder.Write(&goaudio.IntBuffer{
		Data: samples,
		Format: &goaudio.Format{
			SampleRate:  w.format.SampleRate,
			NumChannels: w.format.Channels,
		},
	}); err != nil {
		return fmt.Errorf("failed to write to WAV encoder: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (w *WAVWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return w.file.Close()
}

// ABOUTME: FLAC input component
// ABOUTME: Wraps mewkiz/flac frame parsing behind the host input interface
package input

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mewkiz/flac"
	"github.com/unjello/foo-input-amr/internal/audio"
)

var flacFactoryID = uuid.MustParse("5f03dd0d-5a26-4522-a207-c0dfbfbab4a0")

var flacMagic = []byte("fLaC")

// NewFLACFactory registers the FLAC input.
func NewFLACFactory() *Factory {
	return &Factory{
		ID:           flacFactoryID,
		Name:         "FLAC input",
		Extensions:   []string{".flac"},
		ContentTypes: []string{"audio/flac", "audio/x-flac"},
		Sniff:        sniffFLAC,
		Open:         openFLAC,
	}
}

func sniffFLAC(src io.ReadSeeker) bool {
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return false
	}

	var head [4]byte
	_, rerr := io.ReadFull(src, head[:])

	if _, err := src.Seek(pos, io.SeekStart); err != nil {
		return false
	}
	return rerr == nil && bytes.Equal(head[:], flacMagic)
}

// FLACInput decodes a FLAC stream frame by frame. The plain frame parser
// has no sample index, so this input does not seek.
type FLACInput struct {
	stream *flac.Stream
	format audio.Format
}

func openFLAC(ctx context.Context, src io.ReadSeeker, reason OpenReason) (Input, error) {
	if reason == OpenInfoWrite {
		return nil, fmt.Errorf("FLAC retagging not supported here: %w", ErrUnsupported)
	}

	stream, err := flac.New(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	log.Printf("Opened FLAC stream: %d Hz, %d channels, %d bit",
		info.SampleRate, info.NChannels, info.BitsPerSample)

	return &FLACInput{
		stream: stream,
		format: audio.Format{
			SampleRate: int(info.SampleRate),
			Channels:   int(info.NChannels),
			BitDepth:   int(info.BitsPerSample),
		},
	}, nil
}

func (in *FLACInput) Info() Info {
	return Info{
		Duration: time.Duration(in.stream.Info.NSamples) * time.Second /
			time.Duration(in.format.SampleRate),
		Format:   in.format,
		Encoding: "FLAC",
	}
}

func (in *FLACInput) DecodeNext(ctx context.Context) (audio.Chunk, bool, error) {
	if err := ctx.Err(); err != nil {
		return audio.Chunk{}, false, err
	}

	frame, err := in.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return audio.Chunk{}, false, nil
		}
		return audio.Chunk{}, false, fmt.Errorf("flac decode failed: %w", err)
	}

	// Interleave subframes, scaling every bit depth to int16.
	shift := in.format.BitDepth - 16
	samples := make([]int16, 0, int(frame.BlockSize)*in.format.Channels)
	for i := 0; i < int(frame.BlockSize); i++ {
		for ch := 0; ch < in.format.Channels; ch++ {
			sample := frame.Subframes[ch].Samples[i]
			if shift > 0 {
				sample >>= shift
			} else if shift < 0 {
				sample <<= -shift
			}
			samples = append(samples, int16(sample))
		}
	}

	return audio.Chunk{Samples: samples, Format: in.format}, true, nil
}

func (in *FLACInput) SeekTo(ctx context.Context, t time.Duration) error {
	return fmt.Errorf("flac input: %w", ErrUnsupported)
}

func (in *FLACInput) CanSeek() bool { return false }

// Close releases nothing of its own; the caller owns the source.
func (in *FLACInput) Close() error { return nil }

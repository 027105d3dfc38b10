// ABOUTME: MP3 input component
// ABOUTME: Wraps hajimehoshi/go-mp3 behind the host input interface
package input

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/unjello/foo-input-amr/internal/audio"
)

var mp3FactoryID = uuid.MustParse("417cf0b1-97f9-46ab-b3a2-55c0d2862288")

// go-mp3 always outputs 16-bit stereo, 4 bytes per sample frame.
const mp3BytesPerFrame = 4

// mp3ChunkBytes is how much decoded PCM one DecodeNext call returns.
const mp3ChunkBytes = 16384

// NewMP3Factory registers the MP3 input.
func NewMP3Factory() *Factory {
	return &Factory{
		ID:           mp3FactoryID,
		Name:         "MP3 input",
		Extensions:   []string{".mp3"},
		ContentTypes: []string{"audio/mpeg", "audio/mp3"},
		Open:         openMP3,
	}
}

// MP3Input decodes an MP3 stream.
type MP3Input struct {
	decoder *mp3.Decoder
	format  audio.Format
	done    bool
}

func openMP3(ctx context.Context, src io.ReadSeeker, reason OpenReason) (Input, error) {
	if reason == OpenInfoWrite {
		return nil, fmt.Errorf("MP3 retagging not supported here: %w", ErrUnsupported)
	}

	decoder, err := mp3.NewDecoder(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	log.Printf("Opened MP3 stream: %d Hz", decoder.SampleRate())

	return &MP3Input{
		decoder: decoder,
		format: audio.Format{
			SampleRate: decoder.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
	}, nil
}

func (in *MP3Input) Info() Info {
	frames := in.decoder.Length() / mp3BytesPerFrame
	return Info{
		Duration: time.Duration(frames) * time.Second / time.Duration(in.format.SampleRate),
		Format:   in.format,
		Encoding: "MPEG-1 Layer 3",
	}
}

func (in *MP3Input) DecodeNext(ctx context.Context) (audio.Chunk, bool, error) {
	if in.done {
		return audio.Chunk{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return audio.Chunk{}, false, err
	}

	buf := make([]byte, mp3ChunkBytes)
	n, err := io.ReadFull(in.decoder, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			in.done = true
		} else {
			return audio.Chunk{}, false, fmt.Errorf("mp3 decode failed: %w", err)
		}
	}
	if n == 0 {
		return audio.Chunk{}, false, nil
	}

	samples := make([]int16, n/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
	return audio.Chunk{Samples: samples, Format: in.format}, true, nil
}

func (in *MP3Input) SeekTo(ctx context.Context, t time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t < 0 {
		t = 0
	}

	frame := int64(t) * int64(in.format.SampleRate) / int64(time.Second)
	if total := in.decoder.Length() / mp3BytesPerFrame; frame > total {
		frame = total
	}

	if _, err := in.decoder.Seek(frame*mp3BytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("mp3 seek failed: %w", err)
	}
	in.done = false
	return nil
}

func (in *MP3Input) CanSeek() bool { return true }

func (in *MP3Input) Close() error { return nil }

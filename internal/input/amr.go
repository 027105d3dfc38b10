// ABOUTME: AMR-NB input component
// ABOUTME: Bridges the frame scanner and decode session to the host interface
package input

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/unjello/foo-input-amr/internal/amr"
	"github.com/unjello/foo-input-amr/internal/audio"
	"github.com/unjello/foo-input-amr/internal/codec"
)

// Component GUID, stable across releases.
var amrFactoryID = uuid.MustParse("9160f16c-62ce-487c-a37a-af537337f3e2")

var amrFormat = audio.Format{
	SampleRate: amr.SampleRate,
	Channels:   amr.Channels,
	BitDepth:   16,
}

// NewAMRFactory registers the AMR-NB input backed by the native codec.
func NewAMRFactory() *Factory {
	return newAMRFactory(codec.NewAMRNB)
}

func newAMRFactory(newDecoder func() (amr.FrameDecoder, error)) *Factory {
	return &Factory{
		ID:           amrFactoryID,
		Name:         "AMR input",
		Extensions:   []string{".amr"},
		ContentTypes: []string{"audio/amr", "audio/x-amr"},
		Sniff:        amr.Probe,
		Open: func(ctx context.Context, src io.ReadSeeker, reason OpenReason) (Input, error) {
			return openAMR(ctx, src, reason, newDecoder)
		},
	}
}

// AMRInput decodes one AMR-NB stream.
type AMRInput struct {
	src     io.ReadSeeker
	session *amr.Session
	frames  uint64
}

func openAMR(ctx context.Context, src io.ReadSeeker, reason OpenReason, newDecoder func() (amr.FrameDecoder, error)) (Input, error) {
	// The container is read-only; retag requests fail loudly.
	if reason == OpenInfoWrite {
		return nil, fmt.Errorf("AMR is read-only: %w", ErrUnsupported)
	}

	if !amr.Probe(src) {
		return nil, fmt.Errorf("not an AMR stream")
	}

	// The frame count is the only stream property not fixed by the
	// format, and the only way to get it is a full scan. Cached for the
	// life of the input.
	frames, err := amr.CountFrames(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to scan AMR frames: %w", err)
	}

	in := &AMRInput{
		src:     src,
		session: amr.NewSession(newDecoder, frames),
		frames:  frames,
	}

	if reason == OpenDecode {
		if err := in.session.Initialize(src); err != nil {
			return nil, err
		}
	}

	log.Printf("Opened AMR stream: %d frames, %v", frames, in.Info().Duration)
	return in, nil
}

func (in *AMRInput) Info() Info {
	return Info{
		Duration: time.Duration(in.frames) * amr.FrameDuration,
		Format:   amrFormat,
		Bitrate:  (8*amr.Channels*amr.SampleRate + 500) / 1000,
		Encoding: "Adaptive Multirate",
	}
}

func (in *AMRInput) DecodeNext(ctx context.Context) (audio.Chunk, bool, error) {
	pcm, hasMore, err := in.session.DecodeNext(ctx, in.src)
	if err != nil || !hasMore {
		return audio.Chunk{}, false, err
	}
	return audio.Chunk{Samples: pcm, Format: amrFormat}, true, nil
}

func (in *AMRInput) SeekTo(ctx context.Context, t time.Duration) error {
	return in.session.SeekToTime(ctx, in.src, t)
}

func (in *AMRInput) CanSeek() bool { return true }

func (in *AMRInput) Close() error {
	return in.session.Close()
}

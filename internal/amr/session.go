// ABOUTME: Decode session for AMR-NB playback
// ABOUTME: Tracks frame position and drives the external frame decoder
package amr

import (
	"context"
	"fmt"
	"io"
	"time"
)

// FrameDecoder is the narrow contract the session needs from the external
// speech codec: one compressed frame in, one fixed 160-sample PCM block
// out. The session owns the decoder for its whole lifetime and releases
// it on Close.
type FrameDecoder interface {
	DecodeFrame(frame []byte) ([]int16, error)
	Close() error
}

// Session sequences per-frame decode calls over one AMR-NB stream. It is
// not safe for concurrent use; a session owns exclusive access to its
// source and decoder.
type Session struct {
	newDecoder  func() (FrameDecoder, error)
	decoder     FrameDecoder
	totalFrames uint64
	frame       uint64
	buf         [maxFrameSize]byte
}

// NewSession creates a session for a stream whose frame count was already
// determined by CountFrames. The decoder itself is not created until
// Initialize, so a session opened purely for metadata never touches the
// codec library.
func NewSession(newDecoder func() (FrameDecoder, error), totalFrames uint64) *Session {
	return &Session{
		newDecoder:  newDecoder,
		totalFrames: totalFrames,
	}
}

// Initialize acquires the decoder handle and positions src at the first
// frame. Calling it again resets the session for another playback pass.
func (s *Session) Initialize(src io.ReadSeeker) error {
	if s.decoder != nil {
		s.decoder.Close()
		s.decoder = nil
	}

	dec, err := s.newDecoder()
	if err != nil {
		return fmt.Errorf("failed to create frame decoder: %w", err)
	}

	if _, err := src.Seek(headerSize, io.SeekStart); err != nil {
		dec.Close()
		return fmt.Errorf("failed to seek to first frame: %w", err)
	}

	s.decoder = dec
	s.frame = 0
	return nil
}

// DecodeNext decodes the next frame into one 160-sample PCM block. It
// returns hasMore=false once the session has consumed as many frames as
// the open-time scan counted, without touching the source or the decoder.
// Any read failure before that point is fatal to the session: the scan
// said the bytes should be there.
func (s *Session) DecodeNext(ctx context.Context, src io.Reader) (pcm []int16, hasMore bool, err error) {
	if s.frame >= s.totalFrames {
		return nil, false, nil
	}
	if s.decoder == nil {
		return nil, false, fmt.Errorf("decode session not initialized")
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if _, err := io.ReadFull(src, s.buf[:1]); err != nil {
		return nil, false, fmt.Errorf("failed to read frame mode byte: %w", err)
	}

	size := FrameSize(s.buf[0])

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if _, err := io.ReadFull(src, s.buf[1:1+size]); err != nil {
		return nil, false, fmt.Errorf("failed to read %d-byte frame payload: %w", size, err)
	}

	pcm, err = s.decoder.DecodeFrame(s.buf[:1+size])
	if err != nil {
		return nil, false, fmt.Errorf("frame decode failed: %w", err)
	}

	s.frame++
	return pcm, true, nil
}

// SeekToTime repositions playback to the frame covering t, using the
// fixed 20 ms-per-frame duration. Seeking past the end clamps to the last
// frame boundary actually present in the stream, which is where the
// linear scan stops.
func (s *Session) SeekToTime(ctx context.Context, src io.ReadSeeker, t time.Duration) error {
	if t < 0 {
		t = 0
	}
	target := uint64(t / FrameDuration)

	reached, err := SeekToFrame(ctx, src, target)
	if err != nil {
		return err
	}
	s.frame = reached
	return nil
}

// CurrentFrame returns the index of the next frame DecodeNext will read.
func (s *Session) CurrentFrame() uint64 { return s.frame }

// TotalFrames returns the frame count the session was opened with.
func (s *Session) TotalFrames() uint64 { return s.totalFrames }

// Close releases the decoder handle. Safe to call at any point, including
// before Initialize and more than once.
func (s *Session) Close() error {
	if s.decoder == nil {
		return nil
	}
	err := s.decoder.Close()
	s.decoder = nil
	return err
}

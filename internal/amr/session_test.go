// ABOUTME: Tests for the AMR-NB decode session
// ABOUTME: Covers decode sequencing, time seek and teardown safety
package amr

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

// fakeDecoder records the frames it is fed and emits silence.
type fakeDecoder struct {
	frames  [][]byte
	closed  bool
	failing bool
}

func (d *fakeDecoder) DecodeFrame(frame []byte) ([]int16, error) {
	if d.failing {
		return nil, errors.New("codec rejected frame")
	}
	d.frames = append(d.frames, append([]byte{}, frame...))
	return make([]int16, SamplesPerFrame), nil
}

func (d *fakeDecoder) Close() error {
	d.closed = true
	return nil
}

func newTestSession(totalFrames uint64) (*Session, *fakeDecoder) {
	dec := &fakeDecoder{}
	sess := NewSession(func() (FrameDecoder, error) { return dec, nil }, totalFrames)
	return sess, dec
}

func TestSessionDecodeSequencing(t *testing.T) {
	modes := []byte{0, 7, 8}
	stream := buildStream(modes...)
	src := bytes.NewReader(stream)
	ctx := context.Background()

	frames, err := CountFrames(ctx, src)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if frames != 3 {
		t.Fatalf("expected 3 frames, got %d", frames)
	}

	sess, dec := newTestSession(frames)
	if err := sess.Initialize(src); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	defer sess.Close()

	for i := range modes {
		pcm, hasMore, err := sess.DecodeNext(ctx, src)
		if err != nil {
			t.Fatalf("decode %d failed: %v", i, err)
		}
		if !hasMore {
			t.Fatalf("decode %d: expected more data", i)
		}
		if len(pcm) != SamplesPerFrame {
			t.Errorf("decode %d: expected %d samples, got %d", i, SamplesPerFrame, len(pcm))
		}
	}

	// The session must report exhaustion without reading further bytes.
	before := src.Len()
	pcm, hasMore, err := sess.DecodeNext(ctx, src)
	if err != nil {
		t.Fatalf("decode past end failed: %v", err)
	}
	if hasMore || pcm != nil {
		t.Error("expected no more data past the last frame")
	}
	if src.Len() != before {
		t.Error("exhausted session read from the source")
	}

	// Each decoded frame is the mode byte plus its full payload.
	if len(dec.frames) != 3 {
		t.Fatalf("expected 3 decoded frames, got %d", len(dec.frames))
	}
	for i, mode := range modes {
		want := 1 + frameSizes[mode&0x0F]
		if len(dec.frames[i]) != want {
			t.Errorf("frame %d: expected %d bytes, got %d", i, want, len(dec.frames[i]))
		}
		if dec.frames[i][0] != mode<<3 {
			t.Errorf("frame %d: expected mode byte %#x, got %#x", i, mode<<3, dec.frames[i][0])
		}
	}
}

func TestSessionRoundTripWithSeek(t *testing.T) {
	stream := buildStream(0, 7, 8)
	src := bytes.NewReader(stream)
	ctx := context.Background()

	sess, dec := newTestSession(3)
	if err := sess.Initialize(src); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	defer sess.Close()

	// Two frames in, 40 ms, so seeking there selects frame index 2.
	if err := sess.SeekToTime(ctx, src, 40*time.Millisecond); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if sess.CurrentFrame() != 2 {
		t.Fatalf("expected current frame 2, got %d", sess.CurrentFrame())
	}

	pcm, hasMore, err := sess.DecodeNext(ctx, src)
	if err != nil || !hasMore {
		t.Fatalf("decode after seek failed: hasMore=%v err=%v", hasMore, err)
	}
	if len(pcm) != SamplesPerFrame {
		t.Errorf("expected %d samples, got %d", SamplesPerFrame, len(pcm))
	}

	// The 3rd frame is the SID frame: mode 8, 5-byte payload.
	last := dec.frames[len(dec.frames)-1]
	if last[0] != 8<<3 || len(last) != 6 {
		t.Errorf("expected seek to land on the SID frame, decoded %v", last)
	}

	if _, hasMore, _ := sess.DecodeNext(ctx, src); hasMore {
		t.Error("expected session exhausted after the last frame")
	}
}

func TestSessionSeekClampsPastEnd(t *testing.T) {
	src := bytes.NewReader(buildStream(0, 1))
	sess, _ := newTestSession(2)
	if err := sess.Initialize(src); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	defer sess.Close()

	if err := sess.SeekToTime(context.Background(), src, time.Hour); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if sess.CurrentFrame() != 2 {
		t.Errorf("expected clamp to frame 2, got %d", sess.CurrentFrame())
	}

	if _, hasMore, err := sess.DecodeNext(context.Background(), src); hasMore || err != nil {
		t.Errorf("expected clean exhaustion after clamped seek: hasMore=%v err=%v", hasMore, err)
	}
}

func TestSessionNegativeSeek(t *testing.T) {
	src := bytes.NewReader(buildStream(0, 1))
	sess, _ := newTestSession(2)
	if err := sess.Initialize(src); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	defer sess.Close()

	if err := sess.SeekToTime(context.Background(), src, -time.Second); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if sess.CurrentFrame() != 0 {
		t.Errorf("expected seek before start to clamp to frame 0, got %d", sess.CurrentFrame())
	}
}

func TestSessionTruncatedPayloadIsFatal(t *testing.T) {
	// Mode 7 declares 31 payload bytes but only 4 are present.
	stream := append([]byte{}, Magic...)
	stream = append(stream, 7<<3, 1, 2, 3, 4)
	src := bytes.NewReader(stream)

	sess, _ := newTestSession(1)
	if err := sess.Initialize(src); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	defer sess.Close()

	if _, _, err := sess.DecodeNext(context.Background(), src); err == nil {
		t.Error("expected a truncated payload to fail the session")
	}
}

func TestSessionDecodeCancellation(t *testing.T) {
	src := bytes.NewReader(buildStream(0))
	sess, _ := newTestSession(1)
	if err := sess.Initialize(src); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := sess.DecodeNext(ctx, src); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSessionDecoderFailureIsFatal(t *testing.T) {
	src := bytes.NewReader(buildStream(0))
	dec := &fakeDecoder{failing: true}
	sess := NewSession(func() (FrameDecoder, error) { return dec, nil }, 1)
	if err := sess.Initialize(src); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	defer sess.Close()

	if _, _, err := sess.DecodeNext(context.Background(), src); err == nil {
		t.Error("expected decoder failure to propagate")
	}
}

func TestSessionDecodeBeforeInitialize(t *testing.T) {
	sess, _ := newTestSession(1)
	if _, _, err := sess.DecodeNext(context.Background(), bytes.NewReader(buildStream(0))); err == nil {
		t.Error("expected decode on an uninitialized session to fail")
	}
}

func TestSessionCloseIsSafe(t *testing.T) {
	sess, dec := newTestSession(1)

	// Close before Initialize must not panic or touch a decoder.
	if err := sess.Close(); err != nil {
		t.Fatalf("close before initialize failed: %v", err)
	}
	if dec.closed {
		t.Error("close before initialize released a decoder that was never created")
	}

	src := bytes.NewReader(buildStream(0))
	if err := sess.Initialize(src); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !dec.closed {
		t.Error("expected decoder released on close")
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("double close failed: %v", err)
	}
}

func TestDurationFormula(t *testing.T) {
	for _, frames := range []uint64{0, 1, 3, 50, 12345} {
		got := time.Duration(frames) * FrameDuration
		want := time.Duration(frames*SamplesPerFrame) * time.Second / SampleRate
		if got != want {
			t.Errorf("frames=%d: expected %v, got %v", frames, want, got)
		}
	}
}

// ABOUTME: Sequential frame scanner for AMR-NB streams
// ABOUTME: Header probe, frame counting and linear seek-to-frame
package amr

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// Probe reports whether src looks like an AMR-NB stream by checking the
// 6-byte magic at the current position. The read position is restored
// before returning, so Probe is safe to call purely as a format sniff.
func Probe(src io.ReadSeeker) bool {
	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return false
	}

	var head [headerSize]byte
	_, rerr := io.ReadFull(src, head[:])

	if _, err := src.Seek(pos, io.SeekStart); err != nil {
		return false
	}

	return rerr == nil && bytes.Equal(head[:], Magic)
}

// CountFrames walks the whole stream and returns the number of frames it
// holds. The format stores no frame count, so the only way to learn it is
// to read every mode byte and skip the payload length it declares. The
// source is rewound to offset 0 afterwards so callers can reuse it for
// playback.
//
// Reserved modes (9-15) declare a zero-length payload; they still count
// as one frame each and are never treated as an end-of-stream marker.
func CountFrames(ctx context.Context, src io.ReadSeeker) (uint64, error) {
	if _, err := src.Seek(headerSize, io.SeekStart); err != nil {
		return 0, err
	}

	var frames uint64
	mode := make([]byte, 1)
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if _, err := io.ReadFull(src, mode); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}

		// Skip the payload without decoding it.
		if _, err := src.Seek(int64(FrameSize(mode[0])), io.SeekCurrent); err != nil {
			return 0, err
		}
		frames++
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return frames, nil
}

// SeekToFrame repositions src to the mode byte of frame target, counting
// frames from the start of the frame region. There is no frame index to
// consult, so this is a linear re-scan: O(target) reads. If the stream
// ends before target frames have been visited, the position stays at end
// of stream and the smaller index actually reached is returned.
func SeekToFrame(ctx context.Context, src io.ReadSeeker, target uint64) (uint64, error) {
	if _, err := src.Seek(headerSize, io.SeekStart); err != nil {
		return 0, err
	}

	var visited uint64
	mode := make([]byte, 1)
	for visited < target {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if _, err := io.ReadFull(src, mode); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}

		if _, err := src.Seek(int64(FrameSize(mode[0])), io.SeekCurrent); err != nil {
			return 0, err
		}
		visited++
	}

	return visited, nil
}

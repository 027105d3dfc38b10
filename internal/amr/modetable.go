// ABOUTME: AMR-NB storage format constants
// ABOUTME: Magic header, mode-to-framesize table and frame timing
package amr

import "time"

// AMR-NB is always 8000 Hz mono with 20 ms frames.
const (
	SampleRate      = 8000
	Channels        = 1
	SamplesPerFrame = 160
	FrameDuration   = 20 * time.Millisecond
)

const (
	headerSize = 6
	// Largest frame: 1 mode byte + 31 payload bytes (12.2 kbit/s).
	maxFrameSize = 32
)

// Magic is the fixed container header every AMR-NB file starts with.
var Magic = []byte("#!AMR\n")

// frameSizes maps the 4-bit mode nibble of a frame's first byte to the
// payload length that follows it. Modes 0-7 are the eight AMR bitrates
// (4.75 through 12.2 kbit/s), mode 8 is a 5-byte SID frame, modes 9-15
// are reserved and carry no payload.
var frameSizes = [16]int{12, 13, 15, 17, 19, 20, 26, 31, 5, 0, 0, 0, 0, 0, 0, 0}

// FrameSize returns the payload length for a frame whose first byte is
// mode. The frame count scan, the seek scan and the decode loop must all
// go through this lookup or durations and seek targets drift apart.
func FrameSize(mode byte) int {
	return frameSizes[(mode>>3)&0x0F]
}

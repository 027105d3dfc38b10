// ABOUTME: Audio type definitions
// ABOUTME: Defines stream formats and decoded PCM chunks
package audio

import "time"

// Format describes a decoded PCM stream.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Chunk is one block of decoded PCM audio.
type Chunk struct {
	Samples []int16
	Format  Format
}

// Duration returns how much playback time the chunk covers.
func (c Chunk) Duration() time.Duration {
	if c.Format.SampleRate == 0 || c.Format.Channels == 0 {
		return 0
	}
	frames := len(c.Samples) / c.Format.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.Format.SampleRate)
}

// ABOUTME: Audio output using oto library
// ABOUTME: Handles PCM playback with software volume control
package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/unjello/foo-input-amr/internal/audio"
)

// Output manages audio output. Chunks written with Play are streamed to
// the device through a pipe, so Play blocks once the device buffer is
// full and naturally paces a decode loop.
type Output struct {
	otoCtx *oto.Context
	player *oto.Player
	pw     *io.PipeWriter
	format audio.Format
	volume int
	muted  bool
	ready  bool
}

// NewOutput creates an audio output.
func NewOutput() *Output {
	return &Output{
		volume: 100,
	}
}

// Initialize sets up oto with the specified format.
func (o *Output) Initialize(format audio.Format) error {
	if o.ready {
		o.Close()
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	pr, pw := io.Pipe()
	o.otoCtx = ctx
	o.player = ctx.NewPlayer(pr)
	o.pw = pw
	o.format = format
	o.ready = true
	o.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels",
		format.SampleRate, format.Channels)

	return nil
}

// Play queues one chunk for playback, applying volume and mute.
func (o *Output) Play(chunk audio.Chunk) error {
	if !o.ready {
		return fmt.Errorf("output not initialized")
	}

	samples := applyVolume(chunk.Samples, o.volume, o.muted)

	buf := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
	}

	if _, err := o.pw.Write(buf); err != nil {
		return fmt.Errorf("playback write failed: %w", err)
	}
	return nil
}

// Drain blocks until everything queued so far has been played.
func (o *Output) Drain() {
	if !o.ready {
		return
	}
	o.pw.Close()
	for o.player.IsPlaying() && o.player.BufferedSize() > 0 {
		time.Sleep(10 * time.Millisecond)
	}
}

// SetVolume sets the volume (0-100).
func (o *Output) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	o.volume = volume
}

// SetMuted sets mute state.
func (o *Output) SetMuted(muted bool) {
	o.muted = muted
}

// Close stops playback and releases the device.
func (o *Output) Close() {
	if !o.ready {
		return
	}
	o.pw.Close()
	o.player.Close()
	o.otoCtx.Suspend()
	o.ready = false
}

// applyVolume applies volume and mute to samples.
func applyVolume(samples []int16, volume int, muted bool) []int16 {
	multiplier := getVolumeMultiplier(volume, muted)

	result := make([]int16, len(samples))
	for i, sample := range samples {
		result[i] = int16(float64(sample) * multiplier)
	}

	return result
}

// getVolumeMultiplier calculates volume multiplier.
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}

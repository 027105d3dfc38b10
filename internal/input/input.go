// ABOUTME: Input component contract exposed to the host player
// ABOUTME: Open reasons, stream info and the decode/seek interface
package input

import (
	"context"
	"errors"
	"time"

	"github.com/unjello/foo-input-amr/internal/audio"
)

// OpenReason states why the host is opening a file. Inputs may refuse
// reasons they cannot serve.
type OpenReason int

const (
	// OpenInfo opens the file to report duration and stream properties.
	OpenInfo OpenReason = iota
	// OpenDecode opens the file for playback.
	OpenDecode
	// OpenInfoWrite opens the file for retagging.
	OpenInfoWrite
)

// ErrUnsupported is returned for operations a format cannot perform,
// such as retagging a read-only container.
var ErrUnsupported = errors.New("input: operation not supported")

// Info describes an opened stream.
type Info struct {
	Duration time.Duration
	Format   audio.Format
	// Bitrate in kbit/s, as reported to the host properties view.
	Bitrate  int
	Encoding string
}

// Input is one opened audio file. An Input owns exclusive access to its
// underlying source; none of its methods may be called concurrently.
type Input interface {
	// Info reports stream properties determined at open time.
	Info() Info
	// DecodeNext produces the next block of PCM. hasMore is false once
	// the stream is exhausted; no chunk accompanies that final call.
	DecodeNext(ctx context.Context) (chunk audio.Chunk, hasMore bool, err error)
	// SeekTo repositions playback to the given time. Seeking past the
	// end clamps rather than failing. Inputs with CanSeek() == false
	// return ErrUnsupported.
	SeekTo(ctx context.Context, t time.Duration) error
	// CanSeek reports whether SeekTo is available.
	CanSeek() bool
	// Close releases the source and any decoder state. Safe to call
	// more than once.
	Close() error
}

//go:build !cgo

// ABOUTME: Stub AMR-NB decoder constructor for builds without cgo
// ABOUTME: Probing and duration scans still work; decoding reports an error
package codec

import (
	"fmt"

	"github.com/unjello/foo-input-amr/internal/amr"
)

// NewAMRNB reports that the native decoder is unavailable. Format
// detection and duration scans never touch the codec, so they keep
// working in pure-Go builds.
func NewAMRNB() (amr.FrameDecoder, error) {
	return nil, fmt.Errorf("AMR-NB decoding requires cgo and libopencore-amrnb")
}

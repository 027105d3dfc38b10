//go:build cgo

// ABOUTME: cgo binding to the opencore-amrnb speech decoder
// ABOUTME: Wraps Decoder_Interface_init/Decode/exit behind amr.FrameDecoder
package codec

/*
#cgo LDFLAGS: -lopencore-amrnb
#include <opencore-amrnb/interf_dec.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/unjello/foo-input-amr/internal/amr"
)

// amrnbDecoder owns one opaque decoder handle from the codec library.
type amrnbDecoder struct {
	state unsafe.Pointer
}

// NewAMRNB acquires a decoder handle from libopencore-amrnb. The handle
// must be released with Close on every exit path.
func NewAMRNB() (amr.FrameDecoder, error) {
	state := C.Decoder_Interface_init()
	if state == nil {
		return nil, fmt.Errorf("amrnb decoder init returned no state")
	}
	return &amrnbDecoder{state: state}, nil
}

// DecodeFrame feeds one complete frame (mode byte plus payload) to the
// codec and returns the fixed 160-sample PCM block it produces. The
// library offers no error return for a single frame decode.
func (d *amrnbDecoder) DecodeFrame(frame []byte) ([]int16, error) {
	if d.state == nil {
		return nil, fmt.Errorf("amrnb decoder already closed")
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty frame")
	}

	pcm := make([]int16, amr.SamplesPerFrame)
	C.Decoder_Interface_Decode(d.state,
		(*C.uchar)(unsafe.Pointer(&frame[0])),
		(*C.short)(unsafe.Pointer(&pcm[0])),
		0)
	return pcm, nil
}

func (d *amrnbDecoder) Close() error {
	if d.state != nil {
		C.Decoder_Interface_exit(d.state)
		d.state = nil
	}
	return nil
}

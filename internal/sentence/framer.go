// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sentence

import "io"

// Boundary marks the start of every talker sentence on the wire.
const Boundary = '$'

// ByteSource is anything the framer can drain without blocking:
// a serial port wrapper, a replay script, or a test mock.
type ByteSource interface {
	// Available reports whether a byte can be read right now.
	Available() bool
	io.ByteReader
}

// FrameResult tells the caller what a call to Frame produced.
type FrameResult int

const (
	// FrameNoData means the source had nothing to offer.
	FrameNoData FrameResult = iota
	// FrameSentence means at least one byte was consumed.
	FrameSentence
	// FrameFault means the source reported data but failed to deliver it.
	FrameFault
)

func (r FrameResult) String() string {
	switch r {
	case FrameNoData:
		return "no-data"
	case FrameSentence:
		return "sentence"
	case FrameFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Frame reads one raw sentence from src.
//
// It consumes bytes while src reports them available, up to maxSize-1 bytes.
// A Boundary byte ends the sentence and is not included. When the limit is
// hit first the partial sentence is returned as is.
func Frame(src ByteSource, maxSize int) (string, FrameResult) {
	buf := make([]byte, 0, max(maxSize-1, 0))
	got := false

	for i := 0; i < maxSize-1; i++ {
		if !src.Available() {
			break
		}
		b, err := src.ReadByte()
		if err != nil {
			return "", FrameFault
		}
		got = true
		if b == Boundary {
			break
		}
		buf = append(buf, b)
	}

	if !got {
		return "", FrameNoData
	}
	return string(buf), FrameSentence
}

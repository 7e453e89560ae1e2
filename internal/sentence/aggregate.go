// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sentence

import "strings"

const (
	// KeyPrefix starts every sentence key this package groups on.
	KeyPrefix = "GP"

	// DefaultBufferSize bounds a single framed sentence.
	DefaultBufferSize = 256
)

// Snapshot maps a sentence key (GPGGA, GPRMC, ...) to the data fields that
// followed it. It only lives for one polling cycle.
type Snapshot map[string][]string

// ParseResult is the outcome of one aggregation cycle.
type ParseResult int

const (
	// ParseOK means the source drained cleanly; the snapshot may still be empty.
	ParseOK ParseResult = iota
	// ParseFailed means a frame faulted or the sentence cap was exceeded.
	ParseFailed
)

func (r ParseResult) String() string {
	if r == ParseOK {
		return "ok"
	}
	return "failed"
}

// AggregateOptions tunes a single aggregation cycle.
type AggregateOptions struct {
	// BufferSize is handed to Frame. Zero means DefaultBufferSize.
	BufferSize int

	// MaxSentences caps the number of frames read in one cycle so a source
	// that never drains cannot stall the caller. A cycle with exactly
	// MaxSentences frames is fine; one more fails it. Zero disables the cap.
	MaxSentences int

	// FlushFinal stores the last key group of the cycle as well. Off by
	// default: the receiver historically drops it, and downstream consumers
	// were tuned against that output.
	FlushFinal bool
}

// Aggregate drains src for one polling cycle and groups the fields of every
// framed sentence under the most recent sentence key.
//
// A group is only stored once a later key shows up, so unless FlushFinal is
// set the last group of the cycle never reaches the snapshot. Fields seen
// before any key are dropped. On any fault the partial snapshot is thrown
// away and an empty one comes back with ParseFailed.
func Aggregate(src ByteSource, opts AggregateOptions) (Snapshot, ParseResult) {
	size := opts.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}

	snap := Snapshot{}
	var key string
	var fields []string

	for n := 0; ; {
		raw, res := Frame(src, size)
		if res == FrameNoData {
			break
		}
		if res == FrameFault {
			return Snapshot{}, ParseFailed
		}
		n++
		if opts.MaxSentences > 0 && n > opts.MaxSentences {
			return Snapshot{}, ParseFailed
		}

		for _, f := range Split(raw, ',') {
			if !strings.HasPrefix(f, KeyPrefix) {
				if key != "" {
					fields = append(fields, f)
				}
				continue
			}
			if key != "" && len(fields) > 0 {
				snap[key] = fields
			}
			key = f
			fields = nil
		}
	}

	if opts.FlushFinal && key != "" && len(fields) > 0 {
		snap[key] = fields
	}
	return snap, ParseOK
}

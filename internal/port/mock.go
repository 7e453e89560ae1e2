package port

import (
	"io"

	"github.com/relabs-tech/gps_fix/internal/sentence"
)

type event int

const (
	eventStart event = iota
	eventData
	eventBoundary
	eventIdle
)

// Mock is an in-memory ByteSource that hands out one chunk per polling
// cycle, the way a UART buffer fills between two polls.
//
// Once a chunk is drained Available reports false. The next chunk is
// released after a false answer that can only come from the start of a
// frame: one that directly follows another false answer or a boundary byte.
// A chunk cut off by the framer's buffer limit costs one extra empty cycle.
type Mock struct {
	chunks [][]byte
	cur    []byte
	last   event

	polls int
	reads int
}

// NewMock queues chunks; the first one is available immediately.
func NewMock(chunks ...string) *Mock {
	m := &Mock{}
	for _, c := range chunks {
		m.chunks = append(m.chunks, []byte(c))
	}
	m.release()
	return m
}

func (m *Mock) release() {
	if len(m.chunks) == 0 {
		m.cur = nil
		return
	}
	m.cur = m.chunks[0]
	m.chunks = m.chunks[1:]
}

// Push queues another chunk behind the pending ones.
func (m *Mock) Push(chunk string) {
	m.chunks = append(m.chunks, []byte(chunk))
}

func (m *Mock) Available() bool {
	m.polls++
	if len(m.cur) > 0 {
		return true
	}
	if m.last == eventIdle || m.last == eventBoundary {
		m.release()
	}
	m.last = eventIdle
	return false
}

func (m *Mock) ReadByte() (byte, error) {
	if len(m.cur) == 0 {
		return 0, io.EOF
	}
	b := m.cur[0]
	m.cur = m.cur[1:]
	m.reads++
	if b == sentence.Boundary {
		m.last = eventBoundary
	} else {
		m.last = eventData
	}
	return b, nil
}

// Polls counts calls to Available.
func (m *Mock) Polls() int { return m.polls }

// Reads counts bytes handed out.
func (m *Mock) Reads() int { return m.reads }

// Pending reports how many chunks are still queued, including the one
// being drained.
func (m *Mock) Pending() int {
	n := len(m.chunks)
	if len(m.cur) > 0 {
		n++
	}
	return n
}

func (m *Mock) Close() error { return nil }

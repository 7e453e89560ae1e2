package port

import (
	"errors"
	"io"
	"os"
)

// Reader turns an io.Reader that returns promptly when idle (a serial port
// with a read timeout) into a ByteSource.
//
// An idle read (0 bytes, io.EOF or a deadline error) means nothing is
// available. Any other read error is handed out once through ReadByte, so
// Available reports true for it and the framer can discard the cycle.
type Reader struct {
	r   io.Reader
	buf []byte
	pos int
	n   int
	err error
}

func NewReader(r io.Reader, size int) *Reader {
	if size <= 0 {
		size = 256
	}
	return &Reader{r: r, buf: make([]byte, size)}
}

func (p *Reader) buffered() int {
	return p.n - p.pos
}

// Available reports whether ReadByte has something to return.
// It performs at most one read on the underlying reader.
func (p *Reader) Available() bool {
	if p.buffered() > 0 || p.err != nil {
		return true
	}

	n, err := p.r.Read(p.buf)
	p.pos, p.n = 0, n
	if err != nil && !isIdle(err) {
		p.err = err
		return true
	}
	return n > 0
}

func (p *Reader) ReadByte() (byte, error) {
	if p.buffered() == 0 && p.err == nil && !p.Available() {
		return 0, io.EOF
	}
	if p.buffered() == 0 {
		err := p.err
		p.err = nil
		return 0, err
	}
	b := p.buf[p.pos]
	p.pos++
	return b, nil
}

func isIdle(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrDeadlineExceeded)
}

package port

import (
	"fmt"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

// jacobsaTimeout rounds to the tenths of a second termios VTIME works in.
func jacobsaTimeout(d time.Duration) uint {
	ms := uint(d / time.Millisecond)
	ms = (ms + 99) / 100 * 100
	if ms == 0 {
		ms = 100
	}
	return ms
}

func openJacobsa(opts Options) (Port, error) {
	serialOpts := serial.OpenOptions{
		PortName:              opts.Device,
		BaudRate:              uint(opts.BaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: jacobsaTimeout(opts.ReadTimeout),
	}

	rwc, err := serial.Open(serialOpts)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Device, err)
	}
	return &readerPort{Reader: NewReader(rwc, opts.BufferSize), c: rwc}, nil
}

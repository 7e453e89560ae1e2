package port

import (
	"fmt"

	"go.bug.st/serial"
)

func openBugst(opts Options) (Port, error) {
	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(opts.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Device, err)
	}
	if err := p.SetReadTimeout(opts.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", opts.Device, err)
	}
	return &readerPort{Reader: NewReader(p, opts.BufferSize), c: p}, nil
}

package port

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/relabs-tech/gps_fix/internal/sentence"
)

const (
	DriverJacobsa = "jacobsa"
	DriverBugst   = "bugst"
	DriverTermios = "termios"
)

// Port is an open byte source that must be closed when done.
type Port interface {
	sentence.ByteSource
	io.Closer
}

// Options selects and configures a serial driver.
type Options struct {
	Driver      string // jacobsa, bugst or termios; empty picks DefaultDriver
	Device      string // e.g. /dev/serial0, /dev/ttyACM0
	BaudRate    int
	ReadTimeout time.Duration // how long an idle read may block
	BufferSize  int
}

const defaultReadTimeout = 100 * time.Millisecond

func (o Options) driver() string {
	d := strings.ToLower(strings.TrimSpace(o.Driver))
	if d == "" {
		return DefaultDriver
	}
	return d
}

// IdleCost is how long one Available call can block on an idle line.
func (o Options) IdleCost() time.Duration {
	timeout := o.ReadTimeout
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	switch o.driver() {
	case DriverTermios:
		return 0
	case DriverJacobsa:
		return time.Duration(jacobsaTimeout(timeout)) * time.Millisecond
	default:
		return timeout
	}
}

// Open opens the device with the selected driver.
func Open(opts Options) (Port, error) {
	if opts.Device == "" {
		return nil, fmt.Errorf("serial device is required")
	}
	if opts.BaudRate <= 0 {
		opts.BaudRate = 9600
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}

	switch opts.driver() {
	case DriverJacobsa:
		return openJacobsa(opts)
	case DriverBugst:
		return openBugst(opts)
	case DriverTermios:
		return openTermios(opts)
	default:
		return nil, fmt.Errorf("unknown serial driver %q", opts.Driver)
	}
}

// readerPort ties a Reader to the device that feeds it.
type readerPort struct {
	*Reader
	c io.Closer
}

func (p *readerPort) Close() error {
	return p.c.Close()
}

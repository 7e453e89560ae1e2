//go:build linux

package port

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultDriver never blocks in Available.
const DefaultDriver = DriverTermios

// termiosPort asks the kernel how many bytes are queued instead of waiting
// on a read timeout, so Available never blocks.
type termiosPort struct {
	*Reader
	f  *os.File
	fd int
}

func (p *termiosPort) Available() bool {
	if p.buffered() > 0 || p.err != nil {
		return true
	}
	n, err := unix.IoctlGetInt(p.fd, unix.TIOCINQ)
	if err != nil || n <= 0 {
		return false
	}
	return p.Reader.Available()
}

func (p *termiosPort) ReadByte() (byte, error) {
	if p.buffered() == 0 && p.err == nil && !p.Available() {
		return 0, fmt.Errorf("%s: no data queued", p.f.Name())
	}
	return p.Reader.ReadByte()
}

func (p *termiosPort) Close() error {
	return p.f.Close()
}

func openTermios(opts Options) (Port, error) {
	fd, err := unix.Open(opts.Device, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Device, err)
	}

	ok := false
	defer func() {
		if !ok {
			_ = unix.Close(fd)
		}
	}()

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("get termios %s: %w", opts.Device, err)
	}

	spd, err := baudToUnix(opts.BaudRate)
	if err != nil {
		return nil, err
	}

	// Raw mode, 8N1.
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL

	// Reads return whatever is queued, possibly nothing.
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 0

	t.Cflag &^= unix.CBAUD
	t.Cflag |= spd
	t.Ispeed = spd
	t.Ospeed = spd

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return nil, fmt.Errorf("set termios %s: %w", opts.Device, err)
	}

	f := os.NewFile(uintptr(fd), opts.Device)
	if f == nil {
		return nil, fmt.Errorf("os.NewFile failed")
	}
	ok = true
	return &termiosPort{Reader: NewReader(f, opts.BufferSize), f: f, fd: fd}, nil
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	default:
		return 0, fmt.Errorf("unsupported baud %d", baud)
	}
}

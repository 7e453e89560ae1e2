//go:build !linux

package port

import "fmt"

const DefaultDriver = DriverJacobsa

func openTermios(opts Options) (Port, error) {
	return nil, fmt.Errorf("termios serial driver not supported on this platform")
}

// Package port adapts serial devices (and in-memory fakes) to the
// non-blocking sentence.ByteSource used by the receiver.
//
// Three serial drivers are available:
//
//	jacobsa  github.com/jacobsa/go-serial, idle reads end on an inter-character timeout
//	bugst    go.bug.st/serial, idle reads end on SetReadTimeout
//	termios  raw termios via golang.org/x/sys/unix, availability from TIOCINQ (linux only)
package port

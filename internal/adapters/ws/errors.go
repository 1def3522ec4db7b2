package ws

import (
	"fmt"
)

// ConnectionError reports a failed Connect: invalid target, refused,
// DNS, timeout, TLS or handshake failure. Connects are never retried.
type ConnectionError struct {
	Addr string
	URL  string
	// Status is the HTTP status of a rejected handshake, 0 otherwise.
	Status int
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("connect %s: %v (status %d)", e.Addr, e.Err, e.Status)
	}
	return fmt.Sprintf("connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// WriteError reports a frame that was not written. Err is
// core.ErrSessionClosed for writes after close.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "write: " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

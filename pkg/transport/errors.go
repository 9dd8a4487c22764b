package transport

import (
	"errors"
	"io"
	"net"
)

var (
	ErrClosed             = errors.New("transport: channel closed")
	ErrEncode             = errors.New("transport: cannot serialize message")
	ErrSend               = errors.New("transport: send failed")
	ErrFrameTooLarge      = errors.New("transport: frame too large")
	ErrCallbackRegistered = errors.New("transport: receive callback already registered")
	ErrNoCallback         = errors.New("transport: no receive callback registered")
	ErrNoPeers            = errors.New("transport: no connected peers")
	ErrNoListener         = errors.New("transport: no listener at address")
	ErrListenerClosed     = errors.New("transport: listener closed")
)

// isClosedErr reports whether err means the underlying link is gone.
func isClosedErr(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, ErrClosed)
}

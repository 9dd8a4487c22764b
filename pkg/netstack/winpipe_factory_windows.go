//go:build windows

package netstack

import (
	"fbbridge/pkg/transport"
	"fbbridge/pkg/transport/winpipe"
)

func newWinPipeTransport() (transport.Transport, error) { return winpipe.New(), nil }

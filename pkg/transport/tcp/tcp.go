// Package tcp carries length-prefixed frames over a TCP connection.
package tcp

import (
	"context"
	"net"

	"fbbridge/pkg/transport"
)

type Transport struct{}

func New() *Transport { return &Transport{} }

func (t *Transport) Kind() transport.Kind { return transport.KindTCP }

func (t *Transport) Listen(ctx context.Context, address string) (transport.Listener, error) {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return transport.NewNetListener(ctx, l, transport.KindTCP), nil
}

func (t *Transport) Dial(ctx context.Context, address string, peer transport.PeerInfo) (transport.Session, error) {
	d := &net.Dialer{}
	c, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	if tc, ok := c.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	if peer.Addr == "" {
		peer.Addr = address
	}
	s := transport.NewConnSession(c, peer, transport.KindTCP)
	context.AfterFunc(ctx, func() { _ = s.Close() })
	return s, nil
}

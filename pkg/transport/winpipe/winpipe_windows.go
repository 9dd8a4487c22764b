//go:build windows

// Package winpipe carries length-prefixed frames over a Windows named pipe.
package winpipe

import (
	"context"

	"github.com/Microsoft/go-winio"

	"fbbridge/pkg/transport"
)

type Transport struct{}

func New() *Transport { return &Transport{} }

func (t *Transport) Kind() transport.Kind { return transport.KindWinPipe }

func (t *Transport) Listen(ctx context.Context, pipeName string) (transport.Listener, error) {
	l, err := winio.ListenPipe(pipeName, &winio.PipeConfig{MessageMode: false})
	if err != nil {
		return nil, err
	}
	return transport.NewNetListener(ctx, l, transport.KindWinPipe), nil
}

func (t *Transport) Dial(ctx context.Context, pipeName string, peer transport.PeerInfo) (transport.Session, error) {
	conn, err := winio.DialPipeContext(ctx, pipeName)
	if err != nil {
		return nil, err
	}
	if peer.Addr == "" {
		peer.Addr = pipeName
	}
	s := transport.NewConnSession(conn, peer, transport.KindWinPipe)
	context.AfterFunc(ctx, func() { _ = s.Close() })
	return s, nil
}

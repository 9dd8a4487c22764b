// Package netstack builds link transports from configuration and wires
// accepted sessions into typed adapters.
package netstack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"fbbridge/pkg/config"
	"fbbridge/pkg/protocol"
	"fbbridge/pkg/transport"
	"fbbridge/pkg/transport/mem"
	tquic "fbbridge/pkg/transport/quic"
	ttcp "fbbridge/pkg/transport/tcp"
)

// ErrUnknownKind is returned for transport kinds this build cannot create.
type ErrUnknownKind string

func (e ErrUnknownKind) Error() string { return "unknown transport kind: " + string(e) }

var (
	memOnce   sync.Once
	sharedMem *mem.Transport
)

// NewByKind constructs a Transport by string kind. All "mem" transports in
// one process share a namespace so a host and UI can meet in-process.
func NewByKind(kind string) (transport.Transport, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "tcp":
		return ttcp.New(), nil
	case "quic":
		return tquic.New()
	case "mem", "inproc":
		memOnce.Do(func() { sharedMem = mem.New() })
		return sharedMem, nil
	case "winpipe", "pipe":
		return newWinPipeTransport()
	default:
		return nil, ErrUnknownKind(kind)
	}
}

// AdapterOptions derives adapter options for side from the transport config.
func AdapterOptions(side protocol.Side, c config.TransportConfig) (transport.Options, error) {
	f, err := protocol.ParseFormat(c.Format)
	if err != nil {
		return transport.Options{}, err
	}
	return transport.Options{
		Side:     side,
		Format:   f,
		Compress: c.Compress,
		Registry: transport.DefaultRegistry(),
	}, nil
}

// StartHost listens on every configured address and attaches each inbound
// UI session to hub. Every decoded message is handed to onMessage. The
// returned closer stops the listeners; sessions end with ctx.
func StartHost(ctx context.Context, c config.TransportConfig, hub *transport.Hub, onMessage transport.ReceiveFunc) (func(), error) {
	tr, err := NewByKind(c.Kind)
	if err != nil {
		return nil, err
	}
	opts, err := AdapterOptions(protocol.SideHost, c)
	if err != nil {
		return nil, err
	}
	if len(c.Listen) == 0 {
		return nil, fmt.Errorf("transport %s: no listen address", tr.Kind())
	}

	var listeners []transport.Listener
	closeAll := func() {
		for i := len(listeners) - 1; i >= 0; i-- {
			_ = listeners[i].Close()
		}
	}
	for _, addr := range c.Listen {
		l, err := tr.Listen(ctx, addr)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("listen %s %s: %w", tr.Kind(), addr, err)
		}
		zap.L().Info("listening", zap.String("kind", tr.Kind().String()), zap.String("addr", l.Addr().String()))
		listeners = append(listeners, l)
		go func() {
			if err := Serve(ctx, l, hub, opts, onMessage); err != nil && !errors.Is(err, context.Canceled) {
				zap.L().Warn("accept loop ended", zap.String("addr", l.Addr().String()), zap.Error(err))
			}
		}()
	}
	return closeAll, nil
}

package netstack

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"fbbridge/pkg/transport"
)

// Serve accepts sessions from l until it fails or ctx is done. Each session
// becomes a host adapter registered with hub for as long as its link lives.
func Serve(ctx context.Context, l transport.Listener, hub *transport.Hub, opts transport.Options, onMessage transport.ReceiveFunc) error {
	for {
		s, err := l.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, transport.ErrListenerClosed) {
				return nil
			}
			return err
		}
		zap.L().Info("inbound session",
			zap.String("peer", string(s.Peer().ID)),
			zap.String("kind", s.TransportKind().String()),
			zap.String("raddr", addrOf(s)))
		go handleSession(ctx, s, hub, opts, onMessage)
	}
}

func handleSession(ctx context.Context, s transport.Session, hub *transport.Hub, opts transport.Options, onMessage transport.ReceiveFunc) {
	st, err := s.OpenStream(ctx)
	if err != nil {
		zap.L().Warn("open stream failed", zap.String("peer", string(s.Peer().ID)), zap.Error(err))
		_ = s.Close()
		return
	}
	a := transport.NewAdapter(st, s.Peer(), opts)
	if err := a.OnReceive(onMessage); err != nil {
		_ = a.Close()
		return
	}
	hub.Add(a)
	defer func() {
		hub.Remove(a)
		_ = s.Close()
	}()
	err = a.Run(ctx)
	zap.L().Info("session ended", zap.String("peer", string(s.Peer().ID)), zap.Error(err))
}

func addrOf(s transport.Session) string {
	if a := s.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}

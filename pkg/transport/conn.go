package transport

import (
	"context"
	"net"
	"sync"
)

// connSession adapts a stream-oriented net.Conn into a Session whose single
// stream is the length-prefixed FrameConn over the connection.
type connSession struct {
	peer PeerInfo
	kind Kind
	c    net.Conn
	fc   *FrameConn
}

// NewConnSession wraps c. Used by link kinds built on net.Conn.
func NewConnSession(c net.Conn, peer PeerInfo, kind Kind) Session {
	return &connSession{peer: peer, kind: kind, c: c, fc: NewFrameConn(c)}
}

func (s *connSession) Peer() PeerInfo       { return s.peer }
func (s *connSession) TransportKind() Kind  { return s.kind }
func (s *connSession) LocalAddr() net.Addr  { return s.c.LocalAddr() }
func (s *connSession) RemoteAddr() net.Addr { return s.c.RemoteAddr() }
func (s *connSession) Close() error         { return s.c.Close() }

func (s *connSession) OpenStream(context.Context) (Stream, error) { return s.fc, nil }

// netListener runs an accept loop over a net.Listener and hands sessions to
// Accept callers.
type netListener struct {
	l       net.Listener
	kind    Kind
	newCh   chan Session
	closeCh chan struct{}
	once    sync.Once
}

// NewNetListener starts accepting on l. Inbound peers are named by
// InboundPeerID.
func NewNetListener(ctx context.Context, l net.Listener, kind Kind) Listener {
	nl := &netListener{l: l, kind: kind, newCh: make(chan Session), closeCh: make(chan struct{})}
	go nl.acceptLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = nl.Close()
		case <-nl.closeCh:
		}
	}()
	return nl
}

func (l *netListener) Addr() net.Addr { return l.l.Addr() }

func (l *netListener) Accept(ctx context.Context) (Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closeCh:
		return nil, ErrListenerClosed
	case s := <-l.newCh:
		return s, nil
	}
}

func (l *netListener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.closeCh)
		err = l.l.Close()
	})
	return err
}

func (l *netListener) acceptLoop() {
	for {
		c, err := l.l.Accept()
		if err != nil {
			return
		}
		peer := PeerInfo{ID: InboundPeerID(l.kind, c.RemoteAddr()), Addr: addrString(c.RemoteAddr())}
		s := NewConnSession(c, peer, l.kind)
		select {
		case l.newCh <- s:
		case <-l.closeCh:
			_ = s.Close()
			return
		}
	}
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}

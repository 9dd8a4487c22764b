package transport

import (
	"context"
	"net"
)

// Kind identifies the link type.
type Kind int

const (
	KindUnknown Kind = iota
	KindMem
	KindTCP
	KindQUIC
	KindWinPipe
)

func (k Kind) String() string {
	switch k {
	case KindMem:
		return "mem"
	case KindTCP:
		return "tcp"
	case KindQUIC:
		return "quic"
	case KindWinPipe:
		return "winpipe"
	default:
		return "unknown"
	}
}

// PeerID is an opaque identity for one end of a session.
type PeerID string

// PeerInfo bundles peer identity and addressing hints.
type PeerInfo struct {
	ID   PeerID
	Addr string
}

// Stream is a bidirectional frame stream. Exactly one reader goroutine is
// expected; SendBytes is safe for concurrent use.
type Stream interface {
	// SendBytes writes one frame. It returns once the frame is handed to the
	// link, without waiting for the other side.
	SendBytes([]byte) error
	// RecvBytes returns the next frame in arrival order.
	RecvBytes() ([]byte, error)
	Close() error
}

// Session is one connection between a UI instance and the host.
type Session interface {
	Peer() PeerInfo
	TransportKind() Kind
	LocalAddr() net.Addr
	RemoteAddr() net.Addr

	// OpenStream returns the session's message stream. Repeated calls return
	// the same stream.
	OpenStream(ctx context.Context) (Stream, error)

	Close() error
}

// Listener accepts inbound sessions.
type Listener interface {
	// Accept blocks until an inbound session is available or ctx is done.
	Accept(ctx context.Context) (Session, error)
	Addr() net.Addr
	// Close stops the listener and unblocks Accept.
	Close() error
}

// Transport provides dialing/listening for one link kind.
type Transport interface {
	Kind() Kind
	Listen(ctx context.Context, address string) (Listener, error)
	Dial(ctx context.Context, address string, peer PeerInfo) (Session, error)
}

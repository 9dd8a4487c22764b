// Package mem is an in-process link kind. Frames are queued without bound so
// a send never waits for the reading side, like a postMessage channel.
package mem

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"fbbridge/pkg/transport"
)

// Transport hosts named in-process listeners.
type Transport struct {
	mu        sync.Mutex
	listeners map[string]*listener
}

func New() *Transport { return &Transport{listeners: make(map[string]*listener)} }

func (t *Transport) Kind() transport.Kind { return transport.KindMem }

func (t *Transport) Listen(ctx context.Context, name string) (transport.Listener, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.listeners[name]; ok {
		return nil, fmt.Errorf("mem: listener %q already exists", name)
	}
	l := &listener{name: name, newCh: make(chan *session, 8), closeCh: make(chan struct{})}
	l.onClose = func() {
		t.mu.Lock()
		if t.listeners[name] == l {
			delete(t.listeners, name)
		}
		t.mu.Unlock()
	}
	t.listeners[name] = l
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-l.closeCh:
		}
	}()
	return l, nil
}

// Dial connects to a listener. The returned session is closed when ctx is
// done.
func (t *Transport) Dial(ctx context.Context, name string, peer transport.PeerInfo) (transport.Session, error) {
	t.mu.Lock()
	l := t.listeners[name]
	t.mu.Unlock()
	if l == nil {
		return nil, fmt.Errorf("%w: mem %q", transport.ErrNoListener, name)
	}
	srv, cli := newPipe(peer, name)
	select {
	case l.newCh <- srv:
	case <-l.closeCh:
		return nil, transport.ErrListenerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	context.AfterFunc(ctx, func() { _ = cli.Close() })
	return cli, nil
}

// Pipe returns two connected sessions without a listener: the first is the
// accepting end, the second the dialing end.
func Pipe(peer transport.PeerInfo, name string) (transport.Session, transport.Session) {
	return newPipe(peer, name)
}

func newPipe(peer transport.PeerInfo, name string) (*session, *session) {
	up, down := newQueue(), newQueue()
	srv := &session{peer: transport.PeerInfo{ID: peer.ID, Addr: name}, local: memAddr(name), remote: memAddr(string(peer.ID)), in: up, out: down}
	cli := &session{peer: peer, local: memAddr(string(peer.ID)), remote: memAddr(name), in: down, out: up}
	return srv, cli
}

type listener struct {
	name    string
	newCh   chan *session
	closeCh chan struct{}
	once    sync.Once
	onClose func()
}

func (l *listener) Addr() net.Addr { return memAddr(l.name) }

func (l *listener) Accept(ctx context.Context) (transport.Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closeCh:
		return nil, transport.ErrListenerClosed
	case s := <-l.newCh:
		return s, nil
	}
}

func (l *listener) Close() error {
	l.once.Do(func() {
		close(l.closeCh)
		if l.onClose != nil {
			l.onClose()
		}
	})
	return nil
}

type memAddr string

func (a memAddr) Network() string { return "mem" }
func (a memAddr) String() string  { return string(a) }

// session is both the Session and its only Stream.
type session struct {
	peer          transport.PeerInfo
	local, remote net.Addr
	in, out       *queue
}

func (s *session) Peer() transport.PeerInfo      { return s.peer }
func (s *session) TransportKind() transport.Kind { return transport.KindMem }
func (s *session) LocalAddr() net.Addr           { return s.local }
func (s *session) RemoteAddr() net.Addr          { return s.remote }

func (s *session) OpenStream(context.Context) (transport.Stream, error) { return s, nil }

func (s *session) SendBytes(b []byte) error {
	if len(b) > transport.MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", transport.ErrFrameTooLarge, len(b))
	}
	return s.out.push(b)
}

func (s *session) RecvBytes() ([]byte, error) { return s.in.pop() }

// Close ends both directions. Frames already queued toward the peer are
// still delivered before it sees EOF.
func (s *session) Close() error {
	s.out.close()
	s.in.close()
	return nil
}

// queue is an unbounded FIFO of frames with a single reader.
type queue struct {
	mu     sync.Mutex
	items  [][]byte
	closed bool
	ready  chan struct{}
}

func newQueue() *queue { return &queue{ready: make(chan struct{}, 1)} }

func (q *queue) push(b []byte) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return io.ErrClosedPipe
	}
	q.items = append(q.items, append([]byte(nil), b...))
	q.mu.Unlock()
	q.signal()
	return nil
}

func (q *queue) pop() ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			b := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return b, nil
		}
		if q.closed {
			q.mu.Unlock()
			return nil, io.EOF
		}
		q.mu.Unlock()
		<-q.ready
	}
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Package quic carries length-prefixed frames over one bidirectional QUIC
// stream per connection.
package quic

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"math/big"
	"net"
	"sync"
	"time"

	quicgo "github.com/quic-go/quic-go"

	"fbbridge/pkg/transport"
)

const alpn = "fbbridge"

// Transport implements QUIC sessions. The dialer opens the message stream
// and writes an empty preface frame so the listener side can accept it.
type Transport struct {
	tlsConf  *tls.Config
	quicConf *quicgo.Config
}

func New() (*Transport, error) {
	cert, err := selfSignedCert()
	if err != nil {
		return nil, fmt.Errorf("quic: certificate: %w", err)
	}
	return &Transport{
		tlsConf: &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{alpn},
			MinVersion:   tls.VersionTLS13,
		},
		quicConf: &quicgo.Config{KeepAlivePeriod: 15 * time.Second},
	}, nil
}

func (t *Transport) Kind() transport.Kind { return transport.KindQUIC }

func (t *Transport) Listen(ctx context.Context, address string) (transport.Listener, error) {
	l, err := quicgo.ListenAddr(address, t.tlsConf, t.quicConf)
	if err != nil {
		return nil, err
	}
	ql := &listener{l: l, newCh: make(chan *session), closeCh: make(chan struct{})}
	go ql.acceptLoop(ctx)
	go func() {
		select {
		case <-ctx.Done():
			_ = ql.Close()
		case <-ql.closeCh:
		}
	}()
	return ql, nil
}

func (t *Transport) Dial(ctx context.Context, address string, peer transport.PeerInfo) (transport.Session, error) {
	// listener certificates are ephemeral and self-signed
	tlsClient := &tls.Config{
		InsecureSkipVerify: true,
		NextProtos:         []string{alpn},
		MinVersion:         tls.VersionTLS13,
	}
	c, err := quicgo.DialAddr(ctx, address, tlsClient, t.quicConf)
	if err != nil {
		return nil, err
	}
	if peer.Addr == "" {
		peer.Addr = address
	}
	s := &session{peer: peer, c: c}
	context.AfterFunc(ctx, func() { _ = s.Close() })
	return s, nil
}

type listener struct {
	l       *quicgo.Listener
	newCh   chan *session
	closeCh chan struct{}
	once    sync.Once
}

func (l *listener) Addr() net.Addr { return l.l.Addr() }

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
	var err error
	l.once.Do(func() {
		close(l.closeCh)
		err = l.l.Close()
	})
	return err
}

func (l *listener) acceptLoop(ctx context.Context) {
	for {
		c, err := l.l.Accept(ctx)
		if err != nil {
			return
		}
		raddr := c.RemoteAddr()
		s := &session{
			peer:    transport.PeerInfo{ID: transport.InboundPeerID(transport.KindQUIC, raddr), Addr: raddr.String()},
			c:       c,
			inbound: true,
		}
		select {
		case l.newCh <- s:
		case <-l.closeCh:
			_ = s.Close()
			return
		}
	}
}

type session struct {
	peer    transport.PeerInfo
	c       quicgo.Connection
	inbound bool

	mu sync.Mutex
	st *transport.FrameConn
}

func (s *session) Peer() transport.PeerInfo      { return s.peer }
func (s *session) TransportKind() transport.Kind { return transport.KindQUIC }
func (s *session) LocalAddr() net.Addr           { return s.c.LocalAddr() }
func (s *session) RemoteAddr() net.Addr          { return s.c.RemoteAddr() }

func (s *session) OpenStream(ctx context.Context) (transport.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != nil {
		return s.st, nil
	}
	if s.inbound {
		qs, err := s.c.AcceptStream(ctx)
		if err != nil {
			return nil, err
		}
		fc := transport.NewFrameConn(streamConn{Stream: qs, conn: s.c})
		if _, err := fc.RecvBytes(); err != nil {
			return nil, fmt.Errorf("quic: read preface: %w", err)
		}
		s.st = fc
		return fc, nil
	}
	qs, err := s.c.OpenStreamSync(ctx)
	if err != nil {
		return nil, err
	}
	fc := transport.NewFrameConn(streamConn{Stream: qs, conn: s.c})
	if err := fc.SendBytes(nil); err != nil {
		return nil, fmt.Errorf("quic: write preface: %w", err)
	}
	s.st = fc
	return fc, nil
}

func (s *session) Close() error { return s.c.CloseWithError(quicgo.ApplicationErrorCode(0), "") }

// streamConn closes the whole connection when the frame stream is closed.
type streamConn struct {
	quicgo.Stream
	conn quicgo.Connection
}

func (c streamConn) Close() error {
	_ = c.Stream.Close()
	return c.conn.CloseWithError(quicgo.ApplicationErrorCode(0), "")
}

// selfSignedCert generates a short-lived self-signed certificate for local QUIC use.
func selfSignedCert() (tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, err
	}
	tmpl := x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}, nil
}

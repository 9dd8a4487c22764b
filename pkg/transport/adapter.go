package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fbbridge/pkg/observability"
	"fbbridge/pkg/protocol"
	"fbbridge/pkg/protocol/codec"
)

// ReceiveFunc consumes one decoded inbound message.
type ReceiveFunc func(protocol.Message)

// Options configures an Adapter.
type Options struct {
	// Side is the end of the channel the adapter runs on. It fixes which
	// directions may be sent and received.
	Side protocol.Side
	// Format selects the body encoding for outgoing frames. Inbound frames
	// carry their own format byte.
	Format protocol.Format
	// Compress enables zstd on outgoing bodies.
	Compress bool
	// Registry overrides the codec set. Nil means JSON, CBOR and Proto.
	Registry *codec.Registry
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *codec.Registry
)

// DefaultRegistry returns the process-wide registry with every wire format
// loaded.
func DefaultRegistry() *codec.Registry {
	defaultRegistryOnce.Do(func() { defaultRegistry = codec.NewRegistry() })
	return defaultRegistry
}

// Adapter turns a raw frame stream into a typed message channel.
type Adapter struct {
	st   Stream
	peer PeerInfo
	opts Options
	log  *zap.Logger

	mu     sync.Mutex
	cb     ReceiveFunc
	closed bool
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewAdapter wraps st for one side of the channel.
func NewAdapter(st Stream, peer PeerInfo, opts Options) *Adapter {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.Format == protocol.FormatUnknown {
		opts.Format = protocol.FormatJSON
	}
	return &Adapter{
		st:   st,
		peer: peer,
		opts: opts,
		log:  zap.L().With(zap.String("side", opts.Side.String()), zap.String("peer", string(peer.ID))),
		done: make(chan struct{}),
	}
}

func (a *Adapter) Peer() PeerInfo { return a.peer }

func (a *Adapter) Side() protocol.Side { return a.opts.Side }

// Done is closed once the adapter is closed.
func (a *Adapter) Done() <-chan struct{} { return a.done }

// Send encodes m and hands it to the link. It does not wait for the other
// side to process the message.
func (a *Adapter) Send(m protocol.Message) error {
	if a.isClosed() {
		return ErrClosed
	}
	dir, ok := protocol.DirectionOf(m.Kind())
	if !ok {
		return fmt.Errorf("%w: %q", protocol.ErrUnknownKind, m.Kind())
	}
	if dir != a.opts.Side.Outbound() {
		return fmt.Errorf("%w: %s cannot send %s", protocol.ErrWrongDirection, a.opts.Side, m.Kind())
	}
	frame, err := protocol.EncodeMessage(a.opts.Registry, a.opts.Format, m, a.opts.Compress)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := a.st.SendBytes(frame); err != nil {
		observability.RecordMessage(a.opts.Side.String(), string(m.Kind()), "send_error")
		if isClosedErr(err) {
			return fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	observability.RecordMessage(a.opts.Side.String(), string(m.Kind()), "sent")
	return nil
}

// OnReceive registers the single inbound callback.
func (a *Adapter) OnReceive(cb ReceiveFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cb != nil {
		return ErrCallbackRegistered
	}
	a.cb = cb
	return nil
}

// Run reads frames until the link fails or ctx is done, invoking the
// callback once per message in arrival order. Malformed frames and
// messages of the wrong direction are logged and skipped.
func (a *Adapter) Run(ctx context.Context) error {
	a.mu.Lock()
	cb := a.cb
	a.mu.Unlock()
	if cb == nil {
		return ErrNoCallback
	}

	stop := context.AfterFunc(ctx, func() { _ = a.Close() })
	defer stop()

	side := a.opts.Side.String()
	for {
		frame, err := a.st.RecvBytes()
		if err != nil {
			_ = a.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isClosedErr(err) {
				return fmt.Errorf("%w: %w", ErrClosed, err)
			}
			return err
		}
		m, _, err := protocol.DecodeMessage(a.opts.Registry, frame)
		if err != nil {
			a.log.Warn("dropping malformed frame", zap.Int("bytes", len(frame)), zap.Error(err))
			reason := "malformed"
			if errors.Is(err, protocol.ErrUnknownKind) {
				reason = "unknown_kind"
			}
			observability.RecordProtocolError(side, reason)
			continue
		}
		if m.Direction() != a.opts.Side.Inbound() {
			a.log.Warn("dropping message sent in the wrong direction", zap.String("kind", string(m.Kind())))
			observability.RecordProtocolError(side, "wrong_direction")
			continue
		}
		observability.RecordMessage(side, string(m.Kind()), "received")
		cb(m)
	}
}

// Close shuts the underlying stream. It is safe to call more than once and
// from several goroutines; every call returns the first close result.
func (a *Adapter) Close() error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.done)
		a.mu.Unlock()
		a.closeErr = a.st.Close()
	})
	return a.closeErr
}

func (a *Adapter) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

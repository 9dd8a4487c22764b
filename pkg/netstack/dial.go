package netstack

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fbbridge/pkg/config"
	"fbbridge/pkg/protocol"
	"fbbridge/pkg/transport"
)

// Backoff bounds the delay between dial attempts.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Jitter  time.Duration
}

func BackoffFrom(n config.NetConfig) Backoff {
	return Backoff{Initial: n.BackoffInitial(), Max: n.BackoffMax(), Jitter: n.BackoffJitter()}
}

// Dial retries tr.Dial with exponential backoff until it succeeds or ctx is
// done. The session lives until ctx is done or it is closed.
func Dial(ctx context.Context, tr transport.Transport, address string, peer transport.PeerInfo, b Backoff) (transport.Session, error) {
	backoff := b.Initial
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	maxBackoff := b.Max
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	for {
		sess, err := tr.Dial(ctx, address, peer)
		if err == nil {
			zap.L().Info("dialed", zap.String("kind", tr.Kind().String()), zap.String("addr", address))
			return sess, nil
		}
		zap.L().Warn("dial failed", zap.String("kind", tr.Kind().String()), zap.String("addr", address), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(withJitter(backoff, b.Jitter)):
		}
		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// DialUI connects a UI adapter to the host described by c.
func DialUI(ctx context.Context, c config.TransportConfig, peer transport.PeerInfo, b Backoff) (*transport.Adapter, error) {
	tr, err := NewByKind(c.Kind)
	if err != nil {
		return nil, err
	}
	opts, err := AdapterOptions(protocol.SideUI, c)
	if err != nil {
		return nil, err
	}
	sess, err := Dial(ctx, tr, c.Dial, peer, b)
	if err != nil {
		return nil, err
	}
	st, err := sess.OpenStream(ctx)
	if err != nil {
		_ = sess.Close()
		return nil, err
	}
	return transport.NewAdapter(st, sess.Peer(), opts), nil
}

func withJitter(d, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return d
	}
	n := time.Now().UnixNano()
	return d + time.Duration(n%int64(jitter))
}

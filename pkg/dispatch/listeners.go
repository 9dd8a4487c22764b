package dispatch

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fbbridge/pkg/protocol"
)

// ListenerFunc observes one notification.
type ListenerFunc func(protocol.Message)

// Listeners is the UI-side registry of notification listeners. Several
// listeners may observe the same kind; each must be unregistered when its
// owner goes away.
type Listeners struct {
	mu     sync.Mutex
	nextID uint64
	byKind map[protocol.Kind][]registration
}

type registration struct {
	id uint64
	fn ListenerFunc
}

func NewListeners() *Listeners {
	return &Listeners{byKind: make(map[protocol.Kind][]registration)}
}

// Subscription is the handle returned by Register.
type Subscription struct {
	l    *Listeners
	kind protocol.Kind
	id   uint64
	once sync.Once
}

// Unregister removes the listener. Further calls are no-ops.
func (s *Subscription) Unregister() {
	s.once.Do(func() { s.l.remove(s.kind, s.id) })
}

// Register adds fn for a notification kind.
func (l *Listeners) Register(kind protocol.Kind, fn ListenerFunc) (*Subscription, error) {
	if dir, ok := protocol.DirectionOf(kind); !ok || dir != protocol.HostToUI {
		return nil, fmt.Errorf("%w: %q", ErrNotNotification, kind)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	// copy on write so Dispatch can iterate a snapshot without the lock
	cur := l.byKind[kind]
	next := make([]registration, len(cur), len(cur)+1)
	copy(next, cur)
	l.byKind[kind] = append(next, registration{id: id, fn: fn})
	return &Subscription{l: l, kind: kind, id: id}, nil
}

// On registers a listener taking the typed notification payload.
func On[T protocol.Notification](l *Listeners, fn func(T)) (*Subscription, error) {
	var zero T
	return l.Register(zero.NotificationKind(), func(m protocol.Message) {
		n, err := protocol.PayloadAs[T](m)
		if err != nil {
			zap.L().Warn("listener payload mismatch", zap.String("kind", string(m.Kind())), zap.Error(err))
			return
		}
		fn(n)
	})
}

func (l *Listeners) remove(kind protocol.Kind, id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := l.byKind[kind]
	next := make([]registration, 0, len(cur))
	for _, r := range cur {
		if r.id != id {
			next = append(next, r)
		}
	}
	if len(next) == 0 {
		delete(l.byKind, kind)
		return
	}
	l.byKind[kind] = next
}

// Len returns the number of listeners for kind.
func (l *Listeners) Len(kind protocol.Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKind[kind])
}

// Dispatch calls every listener registered for m's kind, in registration
// order, and returns how many were called. A panicking listener is logged
// and does not stop the others.
func (l *Listeners) Dispatch(m protocol.Message) int {
	if m.Direction() != protocol.HostToUI {
		zap.L().Warn("protocol misuse", zap.String("kind", string(m.Kind())), zap.Error(ErrNotNotification))
		return 0
	}
	l.mu.Lock()
	snapshot := l.byKind[m.Kind()]
	l.mu.Unlock()
	if len(snapshot) == 0 {
		zap.L().Debug("no listeners", zap.String("kind", string(m.Kind())))
	}
	for _, r := range snapshot {
		call(r.fn, m)
	}
	return len(snapshot)
}

func call(fn ListenerFunc, m protocol.Message) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("listener panicked", zap.String("kind", string(m.Kind())), zap.Any("panic", r))
		}
	}()
	fn(m)
}

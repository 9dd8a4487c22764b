package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"fbbridge/pkg/observability"
	"fbbridge/pkg/protocol"
)

// HandlerFunc serves one request. A nil notification means nothing is sent
// back. A returned error is logged and produces no notification; handlers
// surface user-facing failures themselves.
type HandlerFunc func(ctx context.Context, m protocol.Message) (protocol.Notification, error)

// Sender delivers host notifications to the UI side.
type Sender interface {
	Send(protocol.Message) error
}

// Host routes UI requests to their handlers. Each request runs on its own
// goroutine, so notifications follow handler completion order.
type Host struct {
	out Sender

	mu       sync.RWMutex
	handlers map[protocol.Kind]HandlerFunc

	wg sync.WaitGroup
}

func NewHost(out Sender) *Host {
	return &Host{out: out, handlers: make(map[protocol.Kind]HandlerFunc)}
}

// Register binds fn to a request kind, replacing any previous handler.
func (h *Host) Register(kind protocol.Kind, fn HandlerFunc) error {
	if dir, ok := protocol.DirectionOf(kind); !ok || dir != protocol.UIToHost {
		return fmt.Errorf("%w: %q", ErrNotRequest, kind)
	}
	h.mu.Lock()
	_, replaced := h.handlers[kind]
	h.handlers[kind] = fn
	h.mu.Unlock()
	if replaced {
		zap.L().Debug("request handler replaced", zap.String("kind", string(kind)))
	}
	return nil
}

// Handle registers a handler taking the typed request payload.
func Handle[T protocol.Request](h *Host, fn func(ctx context.Context, req T) (protocol.Notification, error)) {
	var zero T
	// T's kind is always a request kind, so Register cannot fail.
	_ = h.Register(zero.RequestKind(), func(ctx context.Context, m protocol.Message) (protocol.Notification, error) {
		req, err := protocol.PayloadAs[T](m)
		if err != nil {
			return nil, err
		}
		return fn(ctx, req)
	})
}

// Registered reports whether kind has a handler.
func (h *Host) Registered(kind protocol.Kind) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.handlers[kind]
	return ok
}

// Dispatch starts the handler for m and returns immediately. Misuse (a
// notification, or a request without handler) is logged and counted.
func (h *Host) Dispatch(ctx context.Context, m protocol.Message) {
	kind := string(m.Kind())
	if m.Direction() != protocol.UIToHost {
		zap.L().Warn("protocol misuse", zap.String("kind", kind), zap.Error(ErrNotRequest))
		observability.RecordProtocolError(protocol.SideHost.String(), "not_request")
		return
	}
	h.mu.RLock()
	fn, ok := h.handlers[m.Kind()]
	h.mu.RUnlock()
	if !ok {
		zap.L().Error("protocol misuse", zap.String("kind", kind), zap.Error(ErrNoHandler))
		observability.RecordProtocolError(protocol.SideHost.String(), "no_handler")
		return
	}
	h.wg.Add(1)
	go h.run(ctx, fn, m)
}

func (h *Host) run(ctx context.Context, fn HandlerFunc, m protocol.Message) {
	defer h.wg.Done()
	kind := string(m.Kind())
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			observability.RecordHandler(kind, "panic", time.Since(start))
			zap.L().Error("request handler failed", zap.String("kind", kind),
				zap.Error(fmt.Errorf("%w: %v", ErrHandlerPanic, r)), zap.Stack("stack"))
		}
	}()

	n, err := fn(ctx, m)
	if err != nil {
		observability.RecordHandler(kind, "error", time.Since(start))
		zap.L().Warn("request handler failed", zap.String("kind", kind), zap.Error(err))
		return
	}
	observability.RecordHandler(kind, "ok", time.Since(start))
	if n == nil {
		return
	}
	if !protocol.Documents(m.Kind(), n.NotificationKind()) {
		zap.L().Error("dropping notification",
			zap.String("kind", kind),
			zap.String("notification", string(n.NotificationKind())),
			zap.Error(ErrUndocumentedResponse))
		observability.RecordProtocolError(protocol.SideHost.String(), "undocumented_response")
		return
	}
	_ = h.Notify(n)
}

// Notify sends n to the UI side, whether or not it answers a request.
func (h *Host) Notify(n protocol.Notification) error {
	if err := h.out.Send(protocol.NewNotification(n)); err != nil {
		zap.L().Warn("notification not delivered", zap.String("kind", string(n.NotificationKind())), zap.Error(err))
		return err
	}
	return nil
}

// Wait blocks until every dispatched handler has returned.
func (h *Host) Wait() { h.wg.Wait() }

package transport

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"fbbridge/pkg/observability"
	"fbbridge/pkg/protocol"
)

// Hub fans host notifications out to every attached UI adapter. UI
// instances are peers; none is addressed individually.
type Hub struct {
	mu       sync.RWMutex
	adapters map[PeerID]*Adapter
}

func NewHub() *Hub {
	return &Hub{adapters: make(map[PeerID]*Adapter)}
}

// Add attaches a. An adapter already registered under the same peer id is
// closed and replaced.
func (h *Hub) Add(a *Adapter) {
	id := a.Peer().ID
	h.mu.Lock()
	old := h.adapters[id]
	h.adapters[id] = a
	n := len(h.adapters)
	h.mu.Unlock()
	if old != nil && old != a {
		_ = old.Close()
		zap.L().Info("replaced ui peer", zap.String("peer", string(id)))
	}
	observability.SetConnectedPeers(n)
}

// Remove detaches the adapter for id if it is still a.
func (h *Hub) Remove(a *Adapter) {
	id := a.Peer().ID
	h.mu.Lock()
	if cur, ok := h.adapters[id]; ok && cur == a {
		delete(h.adapters, id)
	}
	n := len(h.adapters)
	h.mu.Unlock()
	observability.SetConnectedPeers(n)
}

// Peers lists attached peer ids in sorted order.
func (h *Hub) Peers() []PeerID {
	h.mu.RLock()
	out := make([]PeerID, 0, len(h.adapters))
	for id := range h.adapters {
		out = append(out, id)
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.adapters)
}

// Send broadcasts m to every attached peer. Peers whose link has closed
// are detached. The returned error joins every per-peer failure.
func (h *Hub) Send(m protocol.Message) error {
	h.mu.RLock()
	snapshot := make([]*Adapter, 0, len(h.adapters))
	for _, a := range h.adapters {
		snapshot = append(snapshot, a)
	}
	h.mu.RUnlock()
	if len(snapshot) == 0 {
		return fmt.Errorf("%w: %s", ErrNoPeers, m.Kind())
	}

	var errs []error
	for _, a := range snapshot {
		if err := a.Send(m); err != nil {
			if errors.Is(err, ErrClosed) {
				h.Remove(a)
			}
			errs = append(errs, fmt.Errorf("peer %s: %w", a.Peer().ID, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes and detaches every adapter.
func (h *Hub) Close() error {
	h.mu.Lock()
	all := h.adapters
	h.adapters = make(map[PeerID]*Adapter)
	h.mu.Unlock()
	var errs []error
	for _, a := range all {
		if err := a.Close(); err != nil && !isClosedErr(err) {
			errs = append(errs, err)
		}
	}
	observability.SetConnectedPeers(0)
	return errors.Join(errs...)
}

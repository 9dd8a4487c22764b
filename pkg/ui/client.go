// Package ui is the sandboxed side of the bridge: it sends requests to the
// host and fans host notifications out to registered listeners.
package ui

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fbbridge/pkg/dispatch"
	"fbbridge/pkg/protocol"
	"fbbridge/pkg/transport"
)

// Client drives one UI-side adapter.
type Client struct {
	a *transport.Adapter
	l *dispatch.Listeners
}

// New attaches a listener registry to a UI-side adapter. The adapter must
// not have a receive callback yet.
func New(a *transport.Adapter) (*Client, error) {
	if a.Side() != protocol.SideUI {
		return nil, fmt.Errorf("ui client needs a %s adapter, got %s", protocol.SideUI, a.Side())
	}
	c := &Client{a: a, l: dispatch.NewListeners()}
	if err := a.OnReceive(func(m protocol.Message) { c.l.Dispatch(m) }); err != nil {
		return nil, err
	}
	return c, nil
}

// Listeners returns the registry notifications are dispatched to.
func (c *Client) Listeners() *dispatch.Listeners { return c.l }

// Send posts a request to the host. It does not wait for a reply.
func (c *Client) Send(r protocol.Request) error {
	return c.a.Send(protocol.NewRequest(r))
}

// initRequests is the state a freshly loaded view asks for. Nothing is
// replayed on connect, so a view that starts late re-requests it.
func initRequests() []protocol.Request {
	return []protocol.Request{
		protocol.GetEnv{},
		protocol.GetUsers{},
		protocol.GetSelectedProject{},
		protocol.GetFirebaseJSON{},
		protocol.GetWorkspaceFolders{},
	}
}

// Init requests the initial view state. Register listeners first.
func (c *Client) Init() error {
	for _, r := range initRequests() {
		if err := c.Send(r); err != nil {
			return fmt.Errorf("init %s: %w", r.RequestKind(), err)
		}
	}
	zap.L().Debug("ui state requested", zap.String("peer", string(c.a.Peer().ID)))
	return nil
}

// Run receives notifications until ctx is done or the link closes.
func (c *Client) Run(ctx context.Context) error { return c.a.Run(ctx) }

// Done is closed once the underlying adapter is closed.
func (c *Client) Done() <-chan struct{} { return c.a.Done() }

func (c *Client) Close() error { return c.a.Close() }

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"fbbridge/pkg/config"
	"fbbridge/pkg/dispatch"
	"fbbridge/pkg/netstack"
	"fbbridge/pkg/observability"
	"fbbridge/pkg/protocol"
	"fbbridge/pkg/transport"
	"fbbridge/pkg/ui"
)

// printer writes one JSON line per notification.
type printer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newPrinter(w io.Writer) *printer { return &printer{enc: json.NewEncoder(w)} }

func (p *printer) print(m protocol.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.enc.Encode(struct {
		Kind    protocol.Kind `json:"kind"`
		Payload any           `json:"payload"`
	}{m.Kind(), m.Payload()})
}

// connect loads config, sets up logging and dials the host.
func connect(ctx context.Context, opts Options) (*ui.Client, func(), error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Transport != "" {
		cfg.Transport.Kind = opts.Transport
	}
	if opts.Dial != "" {
		cfg.Transport.Dial = opts.Dial
	}
	if opts.Format != "" {
		cfg.Transport.Format = opts.Format
	}

	logger, err := observability.SetupLogger(cfg.Log, zap.String("side", protocol.SideUI.String()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	host, _ := os.Hostname()
	peer := transport.PeerInfo{ID: transport.PeerID(fmt.Sprintf("%s-ui:%s:%d", cfg.AppName, host, os.Getpid()))}
	a, err := netstack.DialUI(ctx, cfg.Transport, peer, netstack.BackoffFrom(cfg.Net))
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("connect to host: %w", err)
	}
	c, err := ui.New(a)
	if err != nil {
		_ = a.Close()
		_ = logger.Sync()
		return nil, nil, err
	}
	cleanup := func() {
		_ = c.Close()
		_ = logger.Sync()
	}
	return c, cleanup, nil
}

func runSend(ctx context.Context, opts Options, kind protocol.Kind, payload []byte, out io.Writer) error {
	m, err := protocol.ParseJSON(kind, payload)
	if err != nil {
		return err
	}
	if m.Direction() != protocol.UIToHost {
		return fmt.Errorf("%w: %s is a notification", protocol.ErrWrongDirection, kind)
	}
	req, _ := m.Request()

	dctx, cancel := context.WithTimeout(ctx, opts.Wait)
	defer cancel()
	c, cleanup, err := connect(dctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	responses, _ := protocol.Responses(kind)
	got := make(chan protocol.Message, 1)
	pr := newPrinter(out)
	for _, k := range responses {
		sub, err := c.Listeners().Register(k, func(m protocol.Message) {
			pr.print(m)
			select {
			case got <- m:
			default:
			}
		})
		if err != nil {
			return err
		}
		defer sub.Unregister()
	}
	go func() { _ = c.Run(dctx) }()

	if err := c.Send(req); err != nil {
		return err
	}
	if len(responses) == 0 {
		return nil
	}
	select {
	case <-got:
		return nil
	case <-c.Done():
		return errors.New("host closed the connection")
	case <-dctx.Done():
		// failures are shown on the host rather than sent back
		return fmt.Errorf("no %v within %s; check the host log", responses, opts.Wait)
	}
}

func runWatch(ctx context.Context, opts Options, out io.Writer) error {
	c, cleanup, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	pr := newPrinter(out)
	for _, k := range protocol.Kinds(protocol.HostToUI) {
		if _, err := c.Listeners().Register(k, pr.print); err != nil {
			return err
		}
	}
	// the view shows which emulator UI is live
	if _, err := dispatch.On(c.Listeners(), func(n protocol.NotifyRunningEmulatorInfo) {
		zap.L().Info("emulators running", zap.String("ui", n.UIURL))
	}); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()
	if opts.Init {
		if err := c.Init(); err != nil {
			return err
		}
	}

	if err := <-errc; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"fbbridge/pkg/config"
	"fbbridge/pkg/dispatch"
	"fbbridge/pkg/host"
	"fbbridge/pkg/lifecycle"
	"fbbridge/pkg/memkv"
	"fbbridge/pkg/netstack"
	"fbbridge/pkg/observability"
	"fbbridge/pkg/protocol"
	"fbbridge/pkg/transport"
)

// run is the serve entry point after CLI parsing.
func run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg, opts)

	logger, err := observability.SetupLogger(cfg.Log, zap.String("side", protocol.SideHost.String()))
	if err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	zap.L().Info("fbbridge-host started", zap.String("app", cfg.AppName), zap.String("version", version))
	zap.L().Debug("effective configuration", zap.Any("config", cfg))

	kv := memkv.New(memkv.Options{})
	defer kv.Close()

	hub := transport.NewHub()
	d := dispatch.NewHost(hub)
	svc, err := buildServices(cfg, kv, d)
	if err != nil {
		return err
	}
	host.Register(d, svc)

	closeListeners, err := netstack.StartHost(ctx, cfg.Transport, hub, func(m protocol.Message) {
		d.Dispatch(ctx, m)
	})
	if err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	if cfg.Debug.Listen != "" {
		status := func() map[string]any {
			return map[string]any{
				"lifecycle": svc.Emulators.State().String(),
				"peers":     hub.Peers(),
			}
		}
		go func() {
			if err := observability.ServeDebug(ctx, cfg.Debug.Listen, status); err != nil {
				zap.L().Warn("debug server stopped", zap.Error(err))
			}
		}()
	}

	zap.L().Info("host is running; press Ctrl+C to exit")
	<-ctx.Done()
	zap.L().Info("shutting down")

	closeListeners()
	grace := cfg.Host.Emulators.StopTimeout()
	if grace <= 0 {
		grace = 30 * time.Second
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace+5*time.Second)
	defer cancel()
	if err := svc.Emulators.Shutdown(sctx); err != nil {
		zap.L().Warn("emulator shutdown", zap.Error(err))
	}
	d.Wait()
	return hub.Close()
}

func applyFlags(cfg *config.Config, opts Options) {
	if opts.Transport != "" {
		cfg.Transport.Kind = opts.Transport
	}
	if len(opts.Listen) > 0 {
		cfg.Transport.Listen = opts.Listen
	}
	if opts.Format != "" {
		cfg.Transport.Format = opts.Format
	}
	if opts.DebugListen != "" {
		cfg.Debug.Listen = opts.DebugListen
	}
}

// buildServices wires the firebase CLI backed collaborators. Notifications
// from the emulator lifecycle go out through d.
func buildServices(cfg *config.Config, kv *memkv.Store, d *dispatch.Host) (host.Services, error) {
	hc := cfg.Host
	roots := hc.WorkspaceFolders
	projectDir := hc.ProjectDir
	if projectDir == "" {
		if len(roots) > 0 {
			projectDir = roots[0]
		} else if wd, err := os.Getwd(); err == nil {
			projectDir = wd
		}
	}
	if len(roots) == 0 {
		roots = []string{projectDir}
	}

	cli := host.FirebaseCLI{Binary: hc.FirebaseBinary, Dir: projectDir}
	reader := host.FileConfigReader{Dir: projectDir}

	users := make([]protocol.User, 0, len(hc.Users))
	for _, u := range hc.Users {
		users = append(users, protocol.User{Email: u.Email, Type: u.Type})
	}
	accounts, err := host.NewMemoryAccounts(kv, users, host.CLILogin(cli))
	if err != nil {
		return host.Services{}, fmt.Errorf("seed accounts: %w", err)
	}

	display := host.LogDisplay{}
	emulators := &host.ExecEmulators{
		CLI:          cli,
		ExportDir:    hc.Emulators.ExportDir,
		StartTimeout: hc.Emulators.StartTimeout(),
		StopTimeout:  hc.Emulators.StopTimeout(),
		ExtraArgs:    hc.Emulators.ExtraArgs,
	}
	mgr := lifecycle.New(emulators, d, display)

	workspace := host.DirWorkspace{Roots: roots}
	return host.Services{
		Monospace: hc.Monospace,
		Accounts:  accounts,
		Projects:  host.NewSessionProjects(kv, reader, host.CLIPicker(cli)),
		Config:    reader,
		Workspace: workspace,
		Hosting:   workspace,
		Emulators: mgr,
		Deployer:  host.ExecDeployer{CLI: cli, ExtraArgs: hc.Deploy.ExtraArgs},
		Channels:  host.CLIChannels{CLI: cli, KV: kv, TTL: hc.ChannelsTTL()},
		Display:   display,
	}, nil
}

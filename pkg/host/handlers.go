package host

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fbbridge/pkg/dispatch"
	"fbbridge/pkg/protocol"
)

// Register binds a handler for every request kind to d.
func Register(d *dispatch.Host, svc Services) {
	dispatch.Handle(d, func(context.Context, protocol.GetEnv) (protocol.Notification, error) {
		return protocol.NotifyEnv{IsMonospace: svc.Monospace}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, _ protocol.GetUsers) (protocol.Notification, error) {
		users, err := svc.Accounts.Users(ctx)
		if err != nil {
			return nil, fail(ctx, svc.Display, "Could not list accounts", err)
		}
		return protocol.NotifyUsers{Users: nonNil(users)}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, _ protocol.AddUser) (protocol.Notification, error) {
		users, err := svc.Accounts.Add(ctx)
		if err != nil {
			return nil, fail(ctx, svc.Display, "Could not add account", err)
		}
		return protocol.NotifyUsers{Users: nonNil(users)}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, req protocol.Logout) (protocol.Notification, error) {
		users, err := svc.Accounts.Logout(ctx, req.Email)
		if err != nil {
			return nil, fail(ctx, svc.Display, "Could not log out "+req.Email, err)
		}
		return protocol.NotifyUsers{Users: nonNil(users)}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, req protocol.RequestChangeUser) (protocol.Notification, error) {
		if err := svc.Accounts.SetActive(ctx, req.User); err != nil {
			return nil, fail(ctx, svc.Display, "Could not switch to "+req.User.Email, err)
		}
		return protocol.NotifyUserChanged{Email: req.User.Email}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, req protocol.SelectProject) (protocol.Notification, error) {
		id, err := svc.Projects.Select(ctx, req.Email)
		if err != nil {
			return nil, fail(ctx, svc.Display, "Could not select a project", err)
		}
		return protocol.NotifyProjectChanged{ProjectID: id}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, _ protocol.GetSelectedProject) (protocol.Notification, error) {
		id, err := svc.Projects.Selected(ctx)
		if err != nil {
			return nil, fail(ctx, svc.Display, "Could not read the selected project", err)
		}
		return protocol.NotifyProjectChanged{ProjectID: id}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, req protocol.SelectAndInitHostingFolder) (protocol.Notification, error) {
		folder, err := svc.Hosting.InitHosting(ctx, req.ProjectID, req.Email, req.SingleAppSupport)
		if err != nil {
			return nil, fail(ctx, svc.Display, "Could not initialize hosting", err)
		}
		return protocol.NotifyHostingFolderReady{ProjectID: req.ProjectID, FolderPath: folder}, nil
	})

	// The lifecycle manager sends its own notifications and shows its own
	// failures.
	dispatch.Handle(d, func(ctx context.Context, req protocol.LaunchEmulators) (protocol.Notification, error) {
		return nil, svc.Emulators.Launch(ctx, req)
	})
	dispatch.Handle(d, func(ctx context.Context, _ protocol.StopEmulators) (protocol.Notification, error) {
		return nil, svc.Emulators.Stop(ctx)
	})

	dispatch.Handle(d, func(ctx context.Context, _ protocol.GetChannels) (protocol.Notification, error) {
		project, err := svc.Projects.Selected(ctx)
		if err == nil && project == "" {
			err = ErrNoProject
		}
		if err != nil {
			return nil, fail(ctx, svc.Display, "Could not list hosting channels", err)
		}
		channels, err := svc.Channels.Channels(ctx, project)
		if err != nil {
			return nil, fail(ctx, svc.Display, "Could not list hosting channels", err)
		}
		return protocol.NotifyChannels{Channels: nonNil(channels)}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, req protocol.HostingDeploy) (protocol.Notification, error) {
		project, err := svc.Projects.Selected(ctx)
		if err == nil && project == "" {
			err = ErrNoProject
		}
		var out protocol.NotifyHostingDeploy
		if err == nil {
			out, err = svc.Deployer.Deploy(ctx, project, req.Target)
		}
		if err != nil {
			_ = fail(ctx, svc.Display, "Deploy failed", err)
			return protocol.NotifyHostingDeploy{Success: false}, nil
		}
		if !out.Success {
			show(ctx, svc.Display, "Deploy to "+req.Target+" did not succeed", nil)
		}
		return out, nil
	})

	dispatch.Handle(d, func(ctx context.Context, _ protocol.GetWorkspaceFolders) (protocol.Notification, error) {
		folders, err := svc.Workspace.Folders(ctx)
		if err != nil {
			return nil, fail(ctx, svc.Display, "Could not list workspace folders", err)
		}
		return protocol.NotifyWorkspaceFolders{Folders: nonNil(folders)}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, _ protocol.GetFirebaseJSON) (protocol.Notification, error) {
		cfg, rc := svc.Config.Read(ctx)
		return protocol.NotifyFirebaseJSON{FirebaseJSON: cfg, FirebaseRC: rc}, nil
	})

	dispatch.Handle(d, func(ctx context.Context, req protocol.ShowMessage) (protocol.Notification, error) {
		show(ctx, svc.Display, req.Msg, req.Options)
		return nil, nil
	})
}

// fail shows a user-readable failure and returns err annotated for the
// dispatcher log.
func fail(ctx context.Context, display Display, what string, err error) error {
	show(ctx, display, what+": "+err.Error(), &protocol.MessageOptions{Modal: false})
	return fmt.Errorf("%s: %w", what, err)
}

func show(ctx context.Context, display Display, msg string, opts *protocol.MessageOptions) {
	if err := display.ShowMessage(ctx, msg, opts); err != nil {
		zap.L().Warn("message display failed", zap.String("msg", msg), zap.Error(err))
	}
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

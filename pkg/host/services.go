package host

import (
	"context"
	"errors"

	"fbbridge/pkg/lifecycle"
	"fbbridge/pkg/protocol"
)

var (
	ErrLoginUnavailable = errors.New("host: interactive login is not available")
	ErrUnknownUser      = errors.New("host: unknown account")
	ErrNoProject        = errors.New("host: no project selected")
	ErrNoWorkspace      = errors.New("host: no workspace folder")
	ErrEmulatorsRunning = errors.New("host: emulator process already running")
	ErrEmulatorsStopped = errors.New("host: emulator process not running")
)

// AccountStore keeps the accounts known to the host.
type AccountStore interface {
	Users(ctx context.Context) ([]protocol.User, error)
	// Add runs the login flow and returns the updated account list.
	Add(ctx context.Context) ([]protocol.User, error)
	// Logout forgets email and returns the updated account list.
	Logout(ctx context.Context, email string) ([]protocol.User, error)
	// SetActive makes u the active account.
	SetActive(ctx context.Context, u protocol.User) error
}

// ProjectResolver tracks the selected project.
type ProjectResolver interface {
	// Select picks a project for the account and remembers it.
	Select(ctx context.Context, email string) (string, error)
	// Selected returns the remembered project, the .firebaserc default, or "".
	Selected(ctx context.Context) (string, error)
}

// ConfigReader returns firebase.json and .firebaserc, or their defaults when
// absent. It has no failure mode.
type ConfigReader interface {
	Read(ctx context.Context) (protocol.FirebaseConfig, protocol.FirebaseRC)
}

// WorkspaceEnumerator lists candidate project roots.
type WorkspaceEnumerator interface {
	Folders(ctx context.Context) ([]string, error)
}

// HostingInitializer picks a hosting folder and scaffolds the project
// files into it.
type HostingInitializer interface {
	InitHosting(ctx context.Context, projectID, email string, singleAppSupport bool) (string, error)
}

// Deployer runs a hosting deploy. A deploy that ran and failed is reported
// as Success=false with a nil error.
type Deployer interface {
	Deploy(ctx context.Context, projectID, target string) (protocol.NotifyHostingDeploy, error)
}

// ChannelLister lists hosting preview channels.
type ChannelLister interface {
	Channels(ctx context.Context, projectID string) ([]protocol.Channel, error)
}

// Display is the host-native message primitive.
type Display = lifecycle.Display

// Services collects the collaborators behind the request handlers.
type Services struct {
	Monospace bool

	Accounts  AccountStore
	Projects  ProjectResolver
	Config    ConfigReader
	Workspace WorkspaceEnumerator
	Hosting   HostingInitializer
	Emulators *lifecycle.Manager
	Deployer  Deployer
	Channels  ChannelLister
	Display   Display
}

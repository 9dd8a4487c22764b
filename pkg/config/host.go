package config

import "time"

// HostConfig configures the host-side collaborators.
type HostConfig struct {
	// Monospace is reported to the UI in notifyEnv
	Monospace bool `mapstructure:"monospace"`
	// ProjectDir holds firebase.json and .firebaserc; defaults to the first workspace folder
	ProjectDir string `mapstructure:"project_dir"`
	// WorkspaceFolders are candidate project roots offered to the UI
	WorkspaceFolders []string `mapstructure:"workspace_folders"`
	// FirebaseBinary is the CLI used to run emulators, deploys and channel listings
	FirebaseBinary string `mapstructure:"firebase_binary"`
	// Users seeds the account store
	Users []UserConfig `mapstructure:"users"`
	// ChannelsTTLMS caches hosting channel listings; 0 disables the cache
	ChannelsTTLMS int `mapstructure:"channels_ttl_ms"`

	Emulators EmulatorsConfig `mapstructure:"emulators"`
	Deploy    DeployConfig    `mapstructure:"deploy"`
}

// UserConfig is one known account. Type is empty for regular accounts and
// "service_account" for service accounts.
type UserConfig struct {
	Email string `mapstructure:"email"`
	Type  string `mapstructure:"type"`
}

type EmulatorsConfig struct {
	StartTimeoutMS int      `mapstructure:"start_timeout_ms"`
	StopTimeoutMS  int      `mapstructure:"stop_timeout_ms"`
	ExportDir      string   `mapstructure:"export_dir"`
	ExtraArgs      []string `mapstructure:"extra_args"`
}

func (e EmulatorsConfig) StartTimeout() time.Duration { return ms(e.StartTimeoutMS) }
func (e EmulatorsConfig) StopTimeout() time.Duration  { return ms(e.StopTimeoutMS) }

type DeployConfig struct {
	ExtraArgs []string `mapstructure:"extra_args"`
}

// ChannelsTTL is the cache lifetime for hosting channel listings.
func (h HostConfig) ChannelsTTL() time.Duration { return ms(h.ChannelsTTLMS) }

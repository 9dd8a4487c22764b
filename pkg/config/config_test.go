package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fbbridge.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadFile(t *testing.T) {
	p := writeConfig(t, `
log:
  level: debug
transport:
  kind: QUIC
  listen: ["127.0.0.1:9000"]
  format: cbor
  compress: true
host:
  monospace: true
  workspace_folders: ["/tmp/a", "/tmp/b"]
  users:
    - email: dev@example.com
    - email: ci@example.iam.gserviceaccount.com
      type: service_account
  emulators:
    start_timeout_ms: 5000
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log.level: %q", cfg.Log.Level)
	}
	if cfg.Transport.Kind != "quic" || cfg.Transport.Format != "cbor" || !cfg.Transport.Compress {
		t.Fatalf("transport: %+v", cfg.Transport)
	}
	if !cfg.Host.Monospace || len(cfg.Host.WorkspaceFolders) != 2 {
		t.Fatalf("host: %+v", cfg.Host)
	}
	if len(cfg.Host.Users) != 2 || cfg.Host.Users[1].Type != "service_account" {
		t.Fatalf("users: %+v", cfg.Host.Users)
	}
	if got := cfg.Host.Emulators.StartTimeout(); got != 5*time.Second {
		t.Fatalf("start timeout: %v", got)
	}
	// untouched defaults survive a partial file
	if cfg.Host.FirebaseBinary != "firebase" || cfg.Net.BackoffMax() != 30*time.Second {
		t.Fatalf("defaults lost: %+v %+v", cfg.Host, cfg.Net)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FBBRIDGE_LOG_LEVEL", "warn")
	t.Setenv("FBBRIDGE_TRANSPORT_KIND", "mem")
	cfg, err := Load(writeConfig(t, "app_name: test\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "warn" || cfg.Transport.Kind != "mem" {
		t.Fatalf("env not applied: %+v %+v", cfg.Log, cfg.Transport)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"level":  "log:\n  level: loud\n",
		"format": "transport:\n  format: xml\n",
		"user":   "host:\n  users:\n    - type: service_account\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

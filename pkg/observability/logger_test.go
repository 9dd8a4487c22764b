package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"fbbridge/pkg/config"
)

func TestSetupLoggerWritesJSONFile(t *testing.T) {
	prev := zap.L()
	defer zap.ReplaceGlobals(prev)

	path := filepath.Join(t.TempDir(), "logs", "host.log")
	logger, err := SetupLogger(config.LogConfig{
		Level:   "WARNING",
		Format:  "json",
		Outputs: []string{path},
	}, zap.String("side", "host"))
	if err != nil {
		t.Fatal(err)
	}
	zap.L().Info("dropped below level")
	zap.L().Warn("kept", zap.String("kind", "getUsers"))
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 entry, got %d: %s", len(lines), b)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["msg"] != "kept" || entry["side"] != "host" || entry["kind"] != "getUsers" {
		t.Fatalf("entry %v", entry)
	}
}

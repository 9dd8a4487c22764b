package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fbbridge/pkg/protocol"
)

// DirWorkspace offers the configured folders that exist on disk.
type DirWorkspace struct {
	Roots []string
}

func (w DirWorkspace) Folders(context.Context) ([]string, error) {
	out := make([]string, 0, len(w.Roots))
	seen := make(map[string]bool, len(w.Roots))
	for _, root := range w.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if fi, err := os.Stat(abs); err != nil || !fi.IsDir() || seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out, nil
}

// InitHosting scaffolds hosting into the first workspace folder: a hosting
// section in firebase.json, the default project alias in .firebaserc and
// the public directory. Existing settings are kept.
func (w DirWorkspace) InitHosting(ctx context.Context, projectID, _ string, singleAppSupport bool) (string, error) {
	if projectID == "" {
		return "", ErrNoProject
	}
	folders, err := w.Folders(ctx)
	if err != nil {
		return "", err
	}
	if len(folders) == 0 {
		return "", ErrNoWorkspace
	}
	dir := folders[0]

	cfg, rc := FileConfigReader{Dir: dir}.Read(ctx)
	jsonPath := filepath.Join(dir, firebaseJSONFile)
	if !fileExists(jsonPath) {
		cfg = protocol.FirebaseConfig{}
	}
	if _, ok := cfg["hosting"]; !ok {
		hosting := protocol.DefaultFirebaseConfig()["hosting"].(map[string]any)
		if singleAppSupport {
			hosting["rewrites"] = []any{map[string]any{"source": "**", "destination": "/index.html"}}
		}
		cfg["hosting"] = hosting
		if err := writeJSON(jsonPath, cfg); err != nil {
			return "", fmt.Errorf("write firebase.json: %w", err)
		}
	}
	rc.Projects["default"] = projectID
	if err := writeJSON(filepath.Join(dir, firebaseRCFile), rc); err != nil {
		return "", fmt.Errorf("write .firebaserc: %w", err)
	}

	public := "public"
	if h, ok := cfg["hosting"].(map[string]any); ok {
		if p, ok := h["public"].(string); ok && p != "" {
			public = p
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, public), 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

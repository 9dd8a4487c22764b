package host

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"fbbridge/pkg/protocol"
)

const (
	firebaseJSONFile = "firebase.json"
	firebaseRCFile   = ".firebaserc"
)

// FileConfigReader reads firebase.json and .firebaserc from Dir. Missing or
// unreadable files yield the catalog defaults.
type FileConfigReader struct {
	Dir string
}

func (r FileConfigReader) Read(context.Context) (protocol.FirebaseConfig, protocol.FirebaseRC) {
	cfg := protocol.DefaultFirebaseConfig()
	rc := protocol.DefaultFirebaseRC()
	if r.Dir == "" {
		return cfg, rc
	}

	var fileCfg protocol.FirebaseConfig
	if ok := readJSON(filepath.Join(r.Dir, firebaseJSONFile), &fileCfg); ok && fileCfg != nil {
		cfg = fileCfg
	}
	var fileRC protocol.FirebaseRC
	if ok := readJSON(filepath.Join(r.Dir, firebaseRCFile), &fileRC); ok {
		rc = fileRC
		if rc.Projects == nil {
			rc.Projects = map[string]string{}
		}
	}
	return cfg, rc
}

func readJSON(path string, v any) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			zap.L().Warn("config file unreadable, using defaults", zap.String("path", path), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		zap.L().Warn("config file malformed, using defaults", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

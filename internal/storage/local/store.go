// Package local implements artifact storage on the local filesystem. It is
// the fallback path when Redis is unreachable: the artifact lands next to the
// job so the map can still be refreshed by hand.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config captures the parameters for the local filesystem store.
type Config struct {
	// BaseDir is the directory where artifacts are written.
	BaseDir string `mapstructure:"base_dir"`
}

// Store writes artifacts as JSON files under a base directory.
type Store struct {
	baseDir string
}

// New creates a filesystem-backed store, verifying the directory exists and
// is writable so a misconfigured fallback surfaces at startup rather than
// after the feeds were already fetched.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
				return nil, fmt.Errorf("create base directory: %w", mkErr)
			}
		} else {
			return nil, fmt.Errorf("stat base directory: %w", err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	probe := filepath.Join(cfg.BaseDir, ".writable_probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}

	return &Store{baseDir: cfg.BaseDir}, nil
}

// Save writes data to <base>/<key>.json.
func (s *Store) Save(_ context.Context, key string, data []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}

	fullPath := filepath.Join(s.baseDir, key+".json")

	// Keys come from configuration; still refuse anything that escapes the
	// base directory.
	rel, err := filepath.Rel(filepath.Clean(s.baseDir), fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("key escapes base directory")
	}

	if err := os.WriteFile(fullPath, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", fullPath, err)
	}
	return nil
}

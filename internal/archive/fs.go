package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FSProvider writes pages under a base directory on the local
// filesystem.
type FSProvider struct {
	baseDir string
}

// NewFSProvider creates the base directory if needed and verifies it is
// writable, failing fast on bad configuration.
func NewFSProvider(baseDir string) (*FSProvider, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("archive base directory is required")
	}
	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create archive directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat archive directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("archive path %s is not a directory", baseDir)
	}

	probe := filepath.Join(baseDir, ".writable_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("archive directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}
	return &FSProvider{baseDir: baseDir}, nil
}

// SavePage writes the body to baseDir/<host>/<date>/<hash>.html.
func (p *FSProvider) SavePage(_ context.Context, rawURL string, body []byte) error {
	name := objectName(rawURL, time.Now())
	fullPath := filepath.Join(p.baseDir, filepath.FromSlash(name))

	cleanBase := filepath.Clean(p.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return fmt.Errorf("archive path escapes base directory")
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("create archive subdirectory: %w", err)
	}
	if err := os.WriteFile(fullPath, body, 0o640); err != nil {
		return fmt.Errorf("write archived page: %w", err)
	}
	return nil
}

func (p *FSProvider) Close() error { return nil }

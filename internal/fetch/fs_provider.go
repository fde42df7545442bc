package fetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FSProvider implements RepoProvider over a local directory — used both
// for `file:` repositories and for the on-disk cache mirror of a remote
// repository (the local Maven repository at ~/.m2/repository by
// default).
type FSProvider struct {
	rootPath string
}

// NewFSProvider creates a provider rooted at rootPath. It does not touch
// the file system; Put creates directories as it writes.
func NewFSProvider(rootPath string) *FSProvider {
	return &FSProvider{rootPath: strings.TrimSuffix(rootPath, "/")}
}

func (p *FSProvider) fullPath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return filepath.Join(p.rootPath, path)
}

// Get reads path relative to the repository root.
func (p *FSProvider) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(p.fullPath(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os404{path}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Exists reports whether path exists under the repository root.
func (p *FSProvider) Exists(path string) (bool, error) {
	_, err := os.Stat(p.fullPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ModTime returns the file's modification time.
func (p *FSProvider) ModTime(path string) (time.Time, bool) {
	info, err := os.Stat(p.fullPath(path))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Put writes data to path, creating parent directories as needed — this
// is how a cache repository mirrors bytes fetched from its parent.
func (p *FSProvider) Put(path string, data []byte) error {
	full := p.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// IsLocal is always true for FSProvider.
func (p *FSProvider) IsLocal() bool { return true }

// RootPath returns the directory this provider is rooted at.
func (p *FSProvider) RootPath() string { return p.rootPath }

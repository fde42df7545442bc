// Package workspace locates and lays out a build workspace's on-disk
// directories: the build output tree and the shared local Maven
// repository, grounded on the teacher's own scan-root discovery in
// internal/config.LoadConfig (walk up from cwd looking for a marker
// file) but generalized to the build engine's own marker and layout.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// MarkerDir names the directory that identifies a workspace root,
// analogous to the teacher's ".stack-analyzer.yml" discovery marker.
const MarkerDir = ".wemi"

// Layout describes the well-known directories of one discovered
// workspace.
type Layout struct {
	Root             string
	BuildDir         string // <root>/build
	CacheDir         string // <root>/build/cache
	LogsDir          string // <root>/build/logs
	ArtifactsDir     string // <root>/build/artifacts
	LocalRepoDir     string // <root>/build/cache/m2, the write-through mirror
	UserRepoDir      string // ~/.m2/repository, the shared local Maven cache
}

// Discover walks upward from startDir looking for a .wemi directory,
// the same way the teacher looks upward for a config marker. If none is
// found, startDir itself is treated as the workspace root.
func Discover(startDir string) (*Layout, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolve start directory: %w", err)
	}

	dir := abs
	for {
		if info, err := os.Stat(filepath.Join(dir, MarkerDir)); err == nil && info.IsDir() {
			return layoutFor(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return layoutFor(abs)
}

func layoutFor(root string) (*Layout, error) {
	userRepo, err := defaultUserRepo()
	if err != nil {
		return nil, err
	}
	build := filepath.Join(root, "build")
	return &Layout{
		Root:         root,
		BuildDir:     build,
		CacheDir:     filepath.Join(build, "cache"),
		LogsDir:      filepath.Join(build, "logs"),
		ArtifactsDir: filepath.Join(build, "artifacts"),
		LocalRepoDir: filepath.Join(build, "cache", "m2"),
		UserRepoDir:  userRepo,
	}, nil
}

func defaultUserRepo() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".m2", "repository"), nil
}

// Ensure creates the layout's build directories (BuildDir, CacheDir,
// LogsDir, ArtifactsDir, LocalRepoDir) with MkdirAll, so it is safe to
// call repeatedly and safe if some already exist. Root and UserRepoDir
// are not created.
func (l *Layout) Ensure() error {
	for _, dir := range []string{l.BuildDir, l.CacheDir, l.LogsDir, l.ArtifactsDir, l.LocalRepoDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create workspace directory %s: %w", dir, err)
		}
	}
	return nil
}

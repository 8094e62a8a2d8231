package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the application's file system locations. A Paths value is
// always constructed explicitly and passed to the components that need it.
type Paths struct {
	BaseDir      string
	CacheDir     string
	DownloadsDir string
	LogsDir      string
}

// NewPaths builds the path set under an explicit base directory.
func NewPaths(baseDir string) *Paths {
	return &Paths{
		BaseDir:      baseDir,
		CacheDir:     filepath.Join(baseDir, "cache"),
		DownloadsDir: filepath.Join(baseDir, "downloads"),
		LogsDir:      filepath.Join(baseDir, "logs"),
	}
}

// DefaultPaths builds the path set under the user cache directory
// (~/.cache/vaschooldata on Linux).
func DefaultPaths() (*Paths, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user cache directory: %w", err)
	}
	return NewPaths(filepath.Join(base, "vaschooldata")), nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.BaseDir, p.CacheDir, p.DownloadsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetCachePath returns the path for a cache file
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetDownloadPath returns the path for a downloaded file
func (p *Paths) GetDownloadPath(filename string) string {
	return filepath.Join(p.DownloadsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

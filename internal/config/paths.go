package config

import (
	"os"
	"path/filepath"
)

// Paths holds all the file system paths used by the application
type Paths struct {
	Home          string // ~/.ring0
	ConfigPath    string // ~/.ring0/config.json
	LogDir        string // ~/.ring0/logs
	CacheRoot     string // ~/.ring0/cache
	FontCachePath string // ~/.ring0/cache/fonts/CascadiaCode.ttf
}

// DefaultPaths returns the default paths configuration
func DefaultPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return PathsAt(filepath.Join(home, ".ring0")), nil
}

// PathsAt lays out every path under root.
func PathsAt(root string) *Paths {
	cache := filepath.Join(root, "cache")
	return &Paths{
		Home:          root,
		ConfigPath:    filepath.Join(root, "config.json"),
		LogDir:        filepath.Join(root, "logs"),
		CacheRoot:     cache,
		FontCachePath: filepath.Join(cache, "fonts", "CascadiaCode.ttf"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Home,
		p.LogDir,
		p.CacheRoot,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return nil
}

// EnsureFontCacheDir creates the font cache parent directory on first use.
// The cache lives for the life of the install and is never cleaned up.
func (p *Paths) EnsureFontCacheDir() (string, error) {
	dir := filepath.Dir(p.FontCachePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package pty

func startBackend(string, Size, *spawnConfig) (backend, error) {
	return nil, ErrUnsupportedPlatform
}

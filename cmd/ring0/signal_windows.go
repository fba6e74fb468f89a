//go:build windows

package main

// startSignalDebug is a no-op; Windows has no SIGUSR1.
func startSignalDebug() {}

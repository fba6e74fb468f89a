package pty

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize is matched by any size with a zero dimension.
	ErrInvalidSize = errors.New("invalid pty size")
	// ErrSpawn is matched by every SpawnError.
	ErrSpawn = errors.New("spawn failed")
	// ErrResize is matched by every ResizeError.
	ErrResize = errors.New("resize failed")
	// ErrUnsupportedPlatform is returned when no pseudo-terminal backend exists.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("pty session closed")
)

// InvalidSizeError reports the rejected dimensions.
type InvalidSizeError struct {
	Cols, Rows uint16
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid size: cols=%d, rows=%d", e.Cols, e.Rows)
}

func (e *InvalidSizeError) Is(target error) bool { return target == ErrInvalidSize }

// SpawnError names the acquisition step that failed.
type SpawnError struct {
	Step string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn: %s: %v", e.Step, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

func (e *SpawnError) Is(target error) bool { return target == ErrSpawn }

func spawnErr(step string, err error) error {
	return &SpawnError{Step: step, Err: err}
}

// ResizeError wraps an OS failure to propagate a new size.
type ResizeError struct {
	Size Size
	Err  error
}

func (e *ResizeError) Error() string {
	return fmt.Sprintf("resize to %s: %v", e.Size, e.Err)
}

func (e *ResizeError) Unwrap() error { return e.Err }

func (e *ResizeError) Is(target error) bool { return target == ErrResize }
